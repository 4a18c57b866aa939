package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"paysync/internal/config"
	"paysync/internal/domain"
	"paysync/internal/handler"
	"paysync/internal/repository"
	"paysync/internal/repository/memory"
	"paysync/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router  *mux.Router
	handler http.Handler
	server  *http.Server
	store   domain.Store
	logger  *slog.Logger
	port    string
}

// NewServer opens the configured store and wires the API routes on top of it.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return newServer(cfg, store, logger), nil
}

func newServer(cfg *config.Config, store domain.Store, logger *slog.Logger) *Server {
	exposeErrors := cfg.IsDevelopment()

	accountHandler := handler.NewAccountHandler(service.NewAccountService(store, logger), exposeErrors)
	userHandler := handler.NewUserHandler(service.NewUserService(store, logger), exposeErrors)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/account/balance", accountHandler.GetBalance).Methods(http.MethodGet)
	api.HandleFunc("/account/deposit", accountHandler.Deposit).Methods(http.MethodPost)
	api.HandleFunc("/account/withdraw", accountHandler.Withdraw).Methods(http.MethodPost)
	api.HandleFunc("/account/transfer", accountHandler.Transfer).Methods(http.MethodPost)

	api.HandleFunc("/user", userHandler.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/user/bulk", userHandler.ListUsers).Methods(http.MethodGet)

	router.HandleFunc("/health", healthHandler(store)).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)

	// mux applies router.Use only to matched routes; wrapping the router
	// covers the 404 and 405 handlers as well.
	chain := requestIDMiddleware(
		loggingMiddleware(logger)(
			recoveryMiddleware(logger, exposeErrors)(
				cors(router))))

	return &Server{
		router:  router,
		handler: chain,
		store:   store,
		logger:  logger,
	}
}

// OpenStore returns the store selected by cfg.StoreDriver. For postgres the
// schema is migrated first when MigrateOnStart is set.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Info("Using in-memory store")
		return memory.NewStore(logger), nil
	}

	dsn := cfg.GetDBConnectionString()
	db, err := repository.Open(ctx, dsn, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to database", "host", cfg.DBHost, "database", cfg.DBName)

	if cfg.MigrateOnStart {
		if err := repository.Migrate(dsn, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	return repository.NewStore(db, logger), nil
}

func healthHandler(store domain.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := store.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop drains in-flight requests, then releases the store.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	var shutdownErr error
	if s.server != nil {
		shutdownErr = s.server.Shutdown(ctx)
	}

	if err := s.store.Close(); err != nil {
		return errors.Join(shutdownErr, fmt.Errorf("failed to close store: %w", err))
	}
	return shutdownErr
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// Handler returns the full middleware chain, for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// NewLogger builds the process logger: text output in development, JSON
// otherwise, at the configured level.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		logger = NewLogger(cfg, os.Stdout)
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		server.store.Close()
		return nil, "", err
	}

	return server, port, nil
}
