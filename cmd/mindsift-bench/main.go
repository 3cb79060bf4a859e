// Benchmarks classifier inference latency against a local model directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/mindsift-ai/mindsift/internal/classifier"
	"github.com/mindsift-ai/mindsift/internal/config"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (required)")
	n := flag.Int("n", 200, "number of iterations")
	text := flag.String("text", "Q: Do you often feel hopeless about the future? A: yes\nQ: Do you sleep well at night? A: no\n", "questionnaire text to classify")
	flag.Parse()

	if *cfgPath == "" {
		log.Fatalf("config flag is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Classifier.ModelDir == "" {
		log.Fatalf("classifier.model_dir must be set in %s", *cfgPath)
	}

	seqLen := cfg.Classifier.SeqLen
	if seqLen <= 0 {
		seqLen = 256
	}

	model, err := classifier.Load(cfg.Classifier.ModelDir, seqLen)
	if err != nil {
		log.Fatalf("load classifier model: %v", err)
	}
	defer model.Close()

	// Warmup
	for i := 0; i < 5; i++ {
		if _, err := model.Classify(*text); err != nil {
			log.Fatalf("warmup classify failed: %v", err)
		}
	}

	if *n <= 0 {
		*n = 1
	}

	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		start := time.Now()
		if _, err := model.Classify(*text); err != nil {
			log.Fatalf("classify failed: %v", err)
		}
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds()) / 1000.0
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds()) / 1000.0

	fmt.Printf("bench: n=%d avg_ms=%.2f p50_ms=%.2f p95_ms=%.2f seq_len=%d model_dir=%s labels=%d\n",
		len(durations),
		avg,
		p50,
		p95,
		seqLen,
		cfg.Classifier.ModelDir,
		len(model.Labels()),
	)
}
