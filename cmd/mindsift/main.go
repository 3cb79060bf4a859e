package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mindsift-ai/mindsift/internal/activation"
	"github.com/mindsift-ai/mindsift/internal/assessment"
	"github.com/mindsift-ai/mindsift/internal/catalog"
	"github.com/mindsift-ai/mindsift/internal/classifier"
	"github.com/mindsift-ai/mindsift/internal/config"
	"github.com/mindsift-ai/mindsift/internal/provider"
	"github.com/mindsift-ai/mindsift/internal/server"
	"github.com/mindsift-ai/mindsift/internal/telemetry"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "mindsift.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		log.Fatalf("failed to load condition catalog: %v", err)
	}

	strategy, prober, modelName, err := buildStrategy(cfg, cat)
	if err != nil {
		log.Fatalf("failed to build strategy: %v", err)
	}
	engine := assessment.NewEngine(cat, strategy)

	emitter, err := buildEmitter(cfg)
	if err != nil {
		log.Fatalf("failed to build activation emitter: %v", err)
	}

	tel, err := telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  cfg.Telemetry.Service,
	})
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}

	srv := server.New(cfg, engine, emitter, tel, prober, modelName)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("mindsift listening on %s (strategy=%s)", addr, engine.StrategyName())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if emitter != nil {
		emitter.Close(shutdownCtx)
	}
	tel.Shutdown(shutdownCtx)
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.Catalog.Path)
}

// buildStrategy maps the configured profile to a reasoning strategy. The
// keywords profile runs without one.
func buildStrategy(cfg *config.Config, cat *catalog.Catalog) (assessment.Strategy, server.Prober, string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Strategy)) {
	case "ollama":
		client := provider.New(
			cfg.Provider.BaseURL,
			cfg.Provider.Model,
			time.Duration(cfg.Provider.TimeoutSeconds)*time.Second,
			time.Duration(cfg.Provider.ProbeTimeoutSeconds)*time.Second,
			provider.Options{
				Temperature: cfg.Provider.Temperature,
				TopP:        cfg.Provider.TopP,
				NumPredict:  cfg.Provider.NumPredict,
			},
		)
		return assessment.NewProviderStrategy(cat, client), client, client.Model(), nil
	case "classifier":
		model, err := classifier.Load(cfg.Classifier.ModelDir, cfg.Classifier.SeqLen)
		if err != nil {
			return nil, nil, "", err
		}
		return assessment.NewClassifierStrategy(model), nil, cfg.Classifier.ModelDir, nil
	case "keywords":
		return nil, nil, "", nil
	default:
		return nil, nil, "", errors.New("unknown strategy " + cfg.Strategy)
	}
}

func buildEmitter(cfg *config.Config) (*activation.Emitter, error) {
	var sinks []activation.Sink
	for _, sc := range cfg.Activation.Sinks {
		switch strings.ToLower(strings.TrimSpace(sc.Type)) {
		case "stdout":
			sinks = append(sinks, activation.NewStdoutSink())
		case "file_jsonl":
			sink, err := activation.NewFileSink(sc.Path)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, sink)
		case "webhook":
			sink, err := activation.NewWebhookSink(sc.URL, sc.Headers, 2*time.Second)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, sink)
		}
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return activation.NewEmitter(activation.EmitterConfig{
		QueueSize: cfg.Activation.QueueSize,
		Workers:   cfg.Activation.Workers,
	}, sinks), nil
}
