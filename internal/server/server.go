// Package server wires the application together: database, services,
// handlers, middleware, and routes. It is the composition root — every
// dependency is constructed here, in one place, and main.go just calls
// New and Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jcrawley/miniblog/internal/auth"
	"github.com/jcrawley/miniblog/internal/handler"
	"github.com/jcrawley/miniblog/internal/middleware"
	sqliteRepo "github.com/jcrawley/miniblog/internal/repository/sqlite"
	"github.com/jcrawley/miniblog/internal/service"
)

// Config holds server configuration, loaded from the environment in
// main.go.
type Config struct {
	Port      int
	DBPath    string // path to the SQLite database file, ":memory:" works too
	JWTSecret string // HMAC secret for session tokens
	StaticDir string // directory of frontend assets; empty disables the mount
}

// Server owns the router, the configuration, and the database handle.
// The database is closed during graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and assembles the whole dependency chain:
// sqlite.DB → services → handlers → routes. Each layer receives only
// the interface it needs — handlers never see the repositories, and
// services never see HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the two resource groups.
//
// ROUTE MAP:
//
//	GET    /users                                  → list users
//	GET    /users/getUserById/{id}                 → get user
//	POST   /users                                  → register
//	POST   /users/login                            → login, sets session cookie
//	GET    /users/me                               → logged-in profile (auth)
//	POST   /users/logout                           → clear session cookie
//	GET    /blogs                                  → list posts
//	GET    /blogs/{id}                             → get post
//	POST   /blogs                                  → create post
//	PUT    /blogs/like/{id}                        → like post
//	POST   /blogs/{id}/comment                     → add comment
//	PUT    /blogs/{id}/comment/like/{commentIndex} → like comment
//	DELETE /blogs/{id}                             → delete post
//	GET    /static/*                               → frontend assets
func (s *Server) setupRoutes() error {
	// Global middleware, in order: request ids for tracing, real client
	// IPs behind proxies, panic recovery, then our request log line.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	userService := service.NewUserService(s.db.Users(), passwords, tokens, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)

	blogService := service.NewBlogService(s.db.Blogs(), s.logger)
	blogHandler := handler.NewBlogHandler(blogService, s.logger)

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.HandleList)
		r.Get("/getUserById/{id}", userHandler.HandleGetByID)
		r.Post("/", userHandler.HandleCreate)
		r.Post("/login", userHandler.HandleLogin)
		r.Post("/logout", userHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", userHandler.HandleMe)
		})
	})

	s.router.Route("/blogs", func(r chi.Router) {
		r.Get("/", blogHandler.HandleList)
		r.Get("/{id}", blogHandler.HandleGetByID)
		r.Post("/", blogHandler.HandleCreate)
		r.Put("/like/{id}", blogHandler.HandleLike)
		r.Post("/{id}/comment", blogHandler.HandleAddComment)
		r.Put("/{id}/comment/like/{commentIndex}", blogHandler.HandleLikeComment)
		r.Delete("/{id}", blogHandler.HandleDelete)
	})

	// The frontend is a static single page that talks to the JSON API.
	if s.config.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds to drain, close the database (flushes the WAL and releases
// the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
