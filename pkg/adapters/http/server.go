// Package http exposes the wizard, trust, document, account and advisor
// operations as a JSON API on a chi router.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/livingtrust/livingtrust/api"
	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/pkg/advisor"
	"github.com/livingtrust/livingtrust/pkg/auth"
	"github.com/livingtrust/livingtrust/pkg/gateway"
	"github.com/livingtrust/livingtrust/pkg/observability"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/livingtrust/livingtrust/pkg/session"
)

// Config wires the server to its collaborators. Sessions, Trusts, Documents
// and Auth are required.
type Config struct {
	Sessions  *session.Manager
	Trusts    ports.TrustRepository
	Documents ports.DocumentRepository
	Auth      *auth.Service

	// Gateway backs POST /api/trusts. Defaults to a Local gateway over Trusts.
	Gateway ports.SubmissionGateway
	// Advisor defaults to the offline advisor.
	Advisor ports.Advisor
	// Streams must be the StreamManager registered as the Sessions observer
	// for /api/wizard/events to receive updates.
	Streams *StreamManager
	Metrics *observability.Metrics
	// AILimiter throttles /api/ai/*. Nil disables rate limiting.
	AILimiter *RateLimiter
	Logger    *slog.Logger
	Version   string
}

// Server holds the handlers.
type Server struct {
	Config
	now   func() time.Time
	newID func() string
}

// New fills defaults for the optional collaborators.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Gateway == nil {
		cfg.Gateway = gateway.NewLocal(cfg.Trusts, gateway.WithLogger(cfg.Logger))
	}
	if cfg.Advisor == nil {
		cfg.Advisor = advisor.NewOffline()
	}
	if cfg.Streams == nil {
		cfg.Streams = NewStreamManager(cfg.Logger)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Server{
		Config: cfg,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// NewHandler builds the server and returns its router.
func NewHandler(cfg Config) http.Handler {
	return New(cfg).Handler()
}

// Handler returns the routed, middleware-wrapped API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	if s.Metrics != nil {
		r.Use(s.Metrics.Instrument)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(s.authenticate)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.Raw())
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Get("/me", s.me)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", s.getProfile)
			r.Put("/profile", s.updateProfile)
		})
		r.Route("/trusts", func(r chi.Router) {
			r.Get("/", s.listTrusts)
			r.Post("/", s.createTrust)
			r.Get("/{id}", s.getTrust)
			r.Put("/{id}", s.updateTrust)
			r.Delete("/{id}", s.deleteTrust)
		})
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.listDocuments)
			r.Post("/", s.uploadDocument)
			r.Get("/{id}", s.getDocument)
			r.Delete("/{id}", s.deleteDocument)
		})
		r.Route("/ai", func(r chi.Router) {
			if s.AILimiter != nil {
				r.Use(s.AILimiter.Middleware)
			}
			r.Post("/chat", s.chat)
			r.Post("/analyze", s.analyze)
		})
		r.Route("/wizard", func(r chi.Router) {
			r.Get("/steps", s.listSteps)
			r.Get("/events", s.subscribeEvents)
			r.Get("/sessions", s.listSessions)
			r.Post("/sessions", s.startSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.discardSession)
				r.Patch("/draft", s.updateDraft)
				r.Post("/next", s.nextStep)
				r.Post("/back", s.previousStep)
				r.Post("/cancel", s.cancelConfirm)
				r.Post("/confirm", s.confirmSubmit)
				r.Post("/respond", s.respondConfirm)
			})
		})
	})
	return r
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"message":   "Living Trust API is running",
		"timestamp": s.now(),
	})
}

func (s *Server) getInfo(w http.ResponseWriter, _ *http.Request) {
	apiVersion := "unknown"
	if doc, err := api.Load(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	} else if err != nil {
		s.Logger.Error("openapi document failed to load", "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "livingtrust-http",
		"version":     s.Version,
		"api_version": apiVersion,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &badRequest{msg: "Invalid request body", err: err}
	}
	return nil
}

// maxBodyBytes leaves room for a document body plus JSON framing.
const maxBodyBytes = 2 << 20
