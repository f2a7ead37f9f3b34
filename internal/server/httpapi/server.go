package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dsmirnov/bookshelf/internal/logging"
	"github.com/dsmirnov/bookshelf/internal/server/config"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *AuthHandlers
	Books   *BookHandlers
	Ratings *RatingHandlers
	Users   *UserHandlers
}

// NewRouter assembles the route table. Middleware order matters: metrics and
// logging wrap everything, then the identity filter attaches the caller, and
// the policy gate decides admission before any handler runs.
func NewRouter(h Handlers, filter *IdentityFilter, logger logging.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(Metrics)
	r.Use(RequestLogger(logger))
	r.Use(filter.Handler)
	r.Use(DefaultPolicy())

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", MetricsHandler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)

	api.HandleFunc("/books", h.Books.List).Methods(http.MethodGet)
	api.HandleFunc("/books/search/{query}", h.Books.Search).Methods(http.MethodGet)
	api.HandleFunc("/books/{id:[0-9]+}", h.Books.Get).Methods(http.MethodGet)
	api.HandleFunc("/books/{id:[0-9]+}/cover", h.Books.PresignCover).Methods(http.MethodPost)

	api.HandleFunc("/ratings", h.Ratings.Create).Methods(http.MethodPost)

	api.HandleFunc("/private/user", h.Users.Username).Methods(http.MethodGet)
	api.HandleFunc("/private/user/books", h.Users.ListReadBooks).Methods(http.MethodGet)
	api.HandleFunc("/private/user/books", h.Users.AddReadBook).Methods(http.MethodPost)
	api.HandleFunc("/private/user/books", h.Users.RemoveReadBook).Methods(http.MethodDelete)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Server wraps http.Server with the configured timeouts and a context-driven
// graceful shutdown.
type Server struct {
	srv             *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config, handler http.Handler, logger logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.EndpointAddrHTTP,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves until the context is cancelled, then drains in-flight requests
// within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "http server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
