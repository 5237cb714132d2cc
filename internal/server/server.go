package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voxreel/internal/logging"
	"voxreel/internal/pipeline"
	"voxreel/internal/services"
)

const defaultMaxUploadBytes = 64 << 20

// Runner is the pipeline surface the server drives.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (pipeline.Result, error)
	MediaAvailable() bool
	OutputDir() string
}

// Options configures a Server.
type Options struct {
	Bind           string
	UploadDir      string
	MaxUploadBytes int64
	// Defaults seeds every request before form fields are applied.
	Defaults pipeline.Request
}

// Server serves the generation API.
type Server struct {
	runner    Runner
	opts      Options
	logger    *slog.Logger
	engine    *gin.Engine
	runMu     sync.Mutex
	stateMu   sync.Mutex
	state     progressState
	listener  net.Listener
	http      *http.Server
	startedAt time.Time
}

type progressState struct {
	Running  bool    `json:"running"`
	RunID    string  `json:"run_id,omitempty"`
	Fraction float64 `json:"fraction"`
	Label    string  `json:"label"`
	Status   string  `json:"status,omitempty"`
	Video    string  `json:"video,omitempty"`
}

// New builds a Server and its routes.
func New(runner Runner, opts Options, logger *slog.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if strings.TrimSpace(opts.UploadDir) == "" {
		return nil, errors.New("server: upload directory is required")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	s := &Server{
		runner:    runner,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "server"),
		startedAt: time.Now(),
	}

	engine := gin.New()
	engine.MaxMultipartMemory = opts.MaxUploadBytes
	engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes(engine)
	s.engine = engine
	return s, nil
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/progress", s.handleProgress)
	r.POST("/api/generate", s.handleGenerate)
	r.GET("/api/videos/:name", s.handleVideo)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Bind)
	if err != nil {
		return fmt.Errorf("server listen: %w", err)
	}
	s.listener = listener
	s.http = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(listener)
	}()
	s.logger.Info("server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		ctx := services.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		started := time.Now()
		c.Next()
		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("latency", time.Since(started)),
		)
	}
}

func (s *Server) snapshot() progressState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Server) update(fn func(*progressState)) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	fn(&s.state)
}
