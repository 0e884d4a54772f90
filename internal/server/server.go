// If you are AI: This file wires every subsystem into one process: the
// pubsub directory, rendezvous directory, relay manager, RTMP/RTMFP
// ingest, and the HTTP control/egress/metrics surfaces. Grounded on the
// teacher's internal/server.Server lifecycle shape (New/Start/Shutdown),
// generalized from a single health-only http.Server to the full set this
// design names.

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"driftcast/internal/api"
	"driftcast/internal/config"
	"driftcast/internal/health"
	"driftcast/internal/httpflv"
	ingestrtmfp "driftcast/internal/ingest/rtmfp"
	ingestrtmp "driftcast/internal/ingest/rtmp"
	"driftcast/internal/metrics"
	"driftcast/internal/pubsub"
	"driftcast/internal/recorder"
	"driftcast/internal/relay"
	"driftcast/internal/rendezvous"
	"driftcast/internal/wsflv"
)

// Server owns every listener the process exposes and the shared state
// they're built on.
type Server struct {
	log *zap.Logger

	directory  *pubsub.Directory
	rendezvous *rendezvous.Directory
	relayMgr   *relay.Manager
	redis      *redis.Client

	httpServer    *http.Server
	healthServer  *http.Server
	metricsServer *http.Server

	rtmpSrv  *ingestrtmp.Server
	rtmfpSrv *ingestrtmfp.Server
}

// New builds every subsystem, binds the RTMP and RTMFP sockets and starts
// the configured relay tasks. The HTTP, health and metrics listeners are
// bound and served by Start.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	recorder.SetDir(cfg.Server.RecordDir)

	directory := pubsub.NewDirectory()

	var store rendezvous.Store
	var redisClient *redis.Client
	if cfg.Rendezvous.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Rendezvous.RedisAddr, DB: cfg.Rendezvous.RedisDB})
		store = rendezvous.NewRedisStore(redisClient, "")
	}
	rendezvousDir := rendezvous.NewDirectory(store)

	relayMgr := relay.NewManager(directory, log)

	mux := http.NewServeMux()
	httpflv.NewService(directory).RegisterRoutes(mux)
	wsflv.NewService(directory).RegisterRoutes(mux)
	api.NewService(directory, relayMgr, rendezvousDir).RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}

	healthMux := http.NewServeMux()
	health.New().RegisterRoutes(healthMux)
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HealthPort),
		Handler: healthMux,
	}

	reg := prometheus.NewRegistry()
	metrics.Register(reg)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	rtmpSrv := ingestrtmp.NewServer(directory, log)
	if err := rtmpSrv.Listen(fmt.Sprintf(":%d", cfg.Server.RTMPPort)); err != nil {
		return nil, fmt.Errorf("listen rtmp: %w", err)
	}

	rtmfpSrv := ingestrtmfp.NewServer(log)
	if err := rtmfpSrv.Listen(fmt.Sprintf(":%d", cfg.Server.RTMFPPort)); err != nil {
		return nil, fmt.Errorf("listen rtmfp: %w", err)
	}

	if err := relayMgr.StartTasks(cfg); err != nil {
		return nil, fmt.Errorf("start relay tasks: %w", err)
	}

	return &Server{
		log:           log,
		directory:     directory,
		rendezvous:    rendezvousDir,
		relayMgr:      relayMgr,
		redis:         redisClient,
		httpServer:    httpServer,
		healthServer:  healthServer,
		metricsServer: metricsServer,
		rtmpSrv:       rtmpSrv,
		rtmfpSrv:      rtmfpSrv,
	}, nil
}

// Start launches every secondary listener in its own goroutine and then
// blocks serving the primary HTTP surface (httpflv/wsflv/api), matching
// the single-blocking-call contract main.go expects.
func (s *Server) Start() error {
	go func() {
		if err := s.healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("health server exited", zap.Error(err))
		}
	}()
	go func() {
		if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("metrics server exited", zap.Error(err))
		}
	}()
	go func() {
		if err := s.rtmpSrv.Accept(); err != nil {
			s.log.Info("rtmp ingest stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := s.rtmfpSrv.Serve(); err != nil {
			s.log.Info("rtmfp ingest stopped", zap.Error(err))
		}
	}()

	return s.httpServer.ListenAndServe()
}

// Shutdown tears down every subsystem, collecting (not short-circuiting
// on) the first error from each so one failing listener doesn't prevent
// the others from closing.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(s.httpServer.Shutdown(ctx))
	record(s.healthServer.Shutdown(ctx))
	record(s.metricsServer.Shutdown(ctx))
	record(s.rtmpSrv.Close())
	record(s.rtmfpSrv.Close())
	record(s.relayMgr.Stop())
	if s.redis != nil {
		record(s.redis.Close())
	}
	return firstErr
}

// ShutdownWithTimeout stops the server with a fixed 5-second timeout.
func (s *Server) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
