// Package server exposes the screening service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mindsift-ai/mindsift/internal/activation"
	"github.com/mindsift-ai/mindsift/internal/assessment"
	"github.com/mindsift-ai/mindsift/internal/config"
	"github.com/mindsift-ai/mindsift/internal/redact"
	"github.com/mindsift-ai/mindsift/internal/telemetry"
)

// Prober reports reasoning-provider liveness. *provider.Client satisfies it.
type Prober interface {
	Models(ctx context.Context) ([]string, error)
}

// Server wires the engine, activation emitter and telemetry behind the
// HTTP surface.
type Server struct {
	cfg       *config.Config
	engine    *assessment.Engine
	emitter   *activation.Emitter
	telemetry *telemetry.Provider
	prober    Prober // nil for profiles without a reasoning provider
	modelName string
	router    *mux.Router
}

// New creates a server with all routes registered. The emitter, telemetry
// provider and prober may be nil.
func New(cfg *config.Config, engine *assessment.Engine, emitter *activation.Emitter, tel *telemetry.Provider, prober Prober, modelName string) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    engine,
		emitter:   emitter,
		telemetry: tel,
		prober:    prober,
		modelName: modelName,
	}

	r := mux.NewRouter()
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	r.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router = r

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

type predictRequest struct {
	Questions  []string `json:"questions"`
	Answers    []string `json:"answers"`
	NoSymptoms bool     `json:"noSymptoms"`
}

type predictResponse struct {
	Verdict    string   `json:"verdict"`
	Labels     []string `json:"labels"`
	Severity   string   `json:"severity"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning,omitempty"`
	Method     string   `json:"method"`
	Note       string   `json:"note,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()

	var body predictRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := &assessment.Request{
		Questions:  body.Questions,
		NoSymptoms: body.NoSymptoms,
	}
	for _, a := range body.Answers {
		req.Answers = append(req.Answers, assessment.Answer(strings.ToLower(strings.TrimSpace(a))))
	}

	res, trace, err := s.engine.Assess(r.Context(), req)
	if err != nil {
		if errors.Is(err, assessment.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		redact.Logf("predict %s: %v", requestID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	total := time.Since(start)
	s.observe(req, res, trace, requestID, total)

	resp := predictResponse{
		Verdict:    res.Verdict,
		Labels:     []string{res.Condition},
		Severity:   string(res.Severity),
		Confidence: round2(res.Confidence),
		Reasoning:  res.Reasoning,
		Method:     string(res.Method),
		Note:       res.Note,
	}
	writeJSON(w, http.StatusOK, resp)
}

// observe emits the activation event and records metrics off the response
// critical path.
func (s *Server) observe(req *assessment.Request, res *assessment.Result, trace *assessment.Trace, requestID string, total time.Duration) {
	if s.emitter != nil {
		ev := activation.BuildEvent(activation.BuildParams{
			Request:      req,
			Result:       res,
			Trace:        trace,
			Model:        s.modelName,
			LoggingLevel: s.cfg.Logging.ActivationLevel,
			RequestID:    requestID,
			Total:        total,
		})
		s.emitter.Emit(context.Background(), ev)
	}
	if s.telemetry != nil {
		s.telemetry.RecordAssessment(
			string(res.Method),
			trace.Strategy,
			trace.FailureReason,
			trace.Fallback,
			float64(total)/float64(time.Millisecond),
			float64(trace.StrategyLatency)/float64(time.Millisecond),
		)
	}
}

type healthResponse struct {
	Status            string   `json:"status"`
	Mode              string   `json:"mode"`
	Model             string   `json:"model,omitempty"`
	ProviderReachable *bool    `json:"provider_reachable,omitempty"`
	Conditions        []string `json:"conditions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "healthy",
		Mode:       s.engine.StrategyName(),
		Model:      s.modelName,
		Conditions: s.engine.Catalog().Names(),
	}

	if s.prober != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		_, err := s.prober.Models(ctx)
		reachable := err == nil
		resp.ProviderReachable = &reachable
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if len(allowedOrigins) == 0 {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				for _, o := range allowedOrigins {
					if o == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						break
					}
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		redact.Logf("server: failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
