// Package server exposes the classification pipeline over HTTP. The
// classifier is loaded once and shared across requests without locking;
// only the history sink carries host-level state.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediplant/internal/classify"
	"mediplant/internal/config"
	"mediplant/internal/history"
)

// Server is the HTTP serving host.
type Server struct {
	cfg        config.Config
	classifier *classify.Classifier
	history    *history.Store
	log        *zap.Logger
	router     *gin.Engine
	startTime  time.Time
}

// New assembles the server around a loaded classifier. The history store
// is optional; when nil the history endpoint reports unavailable.
func New(cfg config.Config, classifier *classify.Classifier, store *history.Store, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:        cfg,
		classifier: classifier,
		history:    store,
		log:        log,
		router:     gin.New(),
		startTime:  time.Now(),
	}

	s.router.Use(gin.Recovery())
	s.router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	s.router.GET("/health", s.handleHealth)
	api := s.router.Group("/api")
	{
		api.POST("/classify", s.handleClassify)
		api.GET("/plants", s.handlePlants)
		api.GET("/history", s.handleHistory)
	}

	return s
}

// Handler returns the HTTP handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the listener and shuts it down when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.ListenAddr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
