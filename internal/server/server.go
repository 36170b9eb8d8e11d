// Package server exposes the anxiety detector over a local HTTP/JSON
// channel. Requests arrive as a typed envelope on a single endpoint,
// mirroring the message protocol the IDE plugin speaks.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"anxiety-service/internal/cache"
	"anxiety-service/internal/config"
	"anxiety-service/internal/detector"
	"anxiety-service/internal/model"
)

type Server struct {
	cfg    config.Config
	logger *zap.Logger
	router *mux.Router
	cache  *cache.RedisClient // nil when no redis_addr configured

	// mu guards the loader/detector pair, which is swapped atomically on
	// (re)initialization.
	mu       sync.Mutex
	loader   *model.Loader
	detector *detector.Detector
	modelDir string

	watcher      *fsnotify.Watcher // nil unless watch_model_dir is set
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		logger:     logger,
		router:     mux.NewRouter(),
		shutdownCh: make(chan struct{}),
	}

	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		s.cache = redisClient
	}

	if cfg.WatchModelDir {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create model watcher: %w", err)
		}
		s.watcher = watcher
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")
	s.router.HandleFunc("/api/v1/request", s.requestHandler).Methods("POST")
	s.router.HandleFunc("/predictions/recent", s.recentPredictionsHandler).Methods("GET")
	s.router.Handle("/metrics/prometheus", promhttp.Handler())
}

// Initialize loads the model directory and swaps in a fresh detector.
// Loading fails closed: on error the previous detector (if any) stays
// active and the error is returned to the caller.
func (s *Server) Initialize(modelDir string) error {
	loader := model.NewLoader(modelDir)
	if err := loader.Load(); err != nil {
		return err
	}

	det := detector.New(loader, detector.Config{
		WindowSize:      s.cfg.WindowSize,
		CooldownSeconds: s.cfg.CooldownSeconds,
		Logger:          s.logger,
	})

	s.mu.Lock()
	previousDir := s.modelDir
	s.loader = loader
	s.detector = det
	s.modelDir = modelDir
	s.mu.Unlock()

	if s.watcher != nil && previousDir != modelDir {
		if previousDir != "" {
			s.watcher.Remove(previousDir)
		}
		if err := s.watcher.Add(modelDir); err != nil {
			s.logger.Warn("cannot watch model directory",
				zap.String("dir", modelDir),
				zap.Error(err),
			)
		}
	}

	info := loader.Info()
	s.logger.Info("detector initialized",
		zap.String("model_dir", modelDir),
		zap.String("model_type", info.ModelType),
		zap.Strings("classes", info.Classes),
		zap.Int("n_features", info.NumFeatures),
	)
	return nil
}

// current returns the active loader/detector pair; both are nil before
// the first successful Initialize.
func (s *Server) current() (*model.Loader, *detector.Detector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loader, s.detector
}

func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.watcher != nil {
		go s.runModelWatcher(ctx)
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-quit:
			s.logger.Info("shutdown signal received")
		case <-s.shutdownCh:
			s.logger.Info("shutdown requested by client")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("could not gracefully shutdown the server", zap.Error(err))
		}
		close(done)
	}()

	s.logger.Info("server ready to handle requests", zap.String("addr", s.cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not listen on %s: %w", s.cfg.ListenAddr, err)
	}

	<-done
	if s.watcher != nil {
		s.watcher.Close()
	}
	if s.cache != nil {
		s.cache.Close()
	}
	s.logger.Info("server stopped")
	return nil
}
