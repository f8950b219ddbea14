package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/conorfennell/todoagenda/internal/domain"
	"github.com/conorfennell/todoagenda/internal/logging"
	"github.com/conorfennell/todoagenda/internal/metrics"
	"github.com/conorfennell/todoagenda/internal/storage"
	"github.com/conorfennell/todoagenda/internal/validation"
)

// Store is the persistence the handlers need. *storage.DB implements it.
type Store interface {
	ListTodos(ctx context.Context, f storage.Filter) ([]domain.Todo, error)
	FindTodoByID(ctx context.Context, id int64) (*domain.Todo, error)
	FindTodosByDueDate(ctx context.Context, dueDate string) ([]domain.Todo, error)
	InsertTodo(ctx context.Context, t domain.Todo) error
	UpdateTodoField(ctx context.Context, id int64, col storage.Column, value string) (int64, error)
	DeleteTodo(ctx context.Context, id int64) (int64, error)
	Ping(ctx context.Context) error
}

// Options tunes the router. The zero value serves the API with lenient
// dates and no metrics, CORS or rate limiting.
type Options struct {
	DatePolicy  validation.DatePolicy
	Metrics     bool
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	store  Store
	router chi.Router
	opts   Options
}

// NewServer creates and configures a new server.
func NewServer(store Store, opts Options) *Server {
	s := &Server{
		store:  store,
		router: chi.NewRouter(),
		opts:   opts,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the middleware stack and routing for the server.
func (s *Server) routes() {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	if s.opts.Metrics {
		r.Use(metrics.Middleware)
	}
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		}))
	}
	if s.opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.opts.RateLimit, s.opts.RateWindow))
	}

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", s.handleListTodos())
		r.Post("/", s.handleCreateTodo())
		r.Get("/{todoId}", s.handleGetTodo())
		r.Put("/{todoId}", s.handleUpdateTodo())
		r.Delete("/{todoId}", s.handleDeleteTodo())
	})
	r.Get("/agenda", s.handleGetAgenda())

	r.Get("/healthz", s.handleHealth())
	if s.opts.Metrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
}

// handleHealth reports whether the database answers a ping.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			l := logging.ForRequest(r)
			l.Warn().Err(err).Msg("health check failed")
			writeText(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeText(w, http.StatusOK, "ok")
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		internalError(w, r, err, "Error encoding response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// internalError logs err and answers 500 without exposing details.
func internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	l := logging.ForRequest(r)
	l.Error().Err(err).Msg(msg)
	writeText(w, http.StatusInternalServerError, "Internal Server Error")
}
