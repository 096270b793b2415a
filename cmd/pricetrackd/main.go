package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/pricetrack/internal/adapters/http/api"
	"github.com/okian/pricetrack/internal/adapters/http/swagger"
	"github.com/okian/pricetrack/internal/adapters/testbackend"
	"github.com/okian/pricetrack/internal/adapters/tracker"
	service "github.com/okian/pricetrack/internal/app"
	"github.com/okian/pricetrack/internal/config"
	"github.com/okian/pricetrack/pkg/logger"
	"github.com/okian/pricetrack/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeoutMargin     = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "pricetrackd exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		return err
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	baseURL := cfg.TrackerBaseURL
	if cfg.FakeBackend {
		baseURL, err = startFakeBackend(ctx)
		if err != nil {
			return err
		}
		log.Warn(ctx, "using in-memory tracking service", logger.String("base_url", baseURL))
	}

	trackerTimeout := time.Duration(cfg.TrackerTimeoutMS) * time.Millisecond
	client := tracker.New(baseURL,
		tracker.WithTimeout(trackerTimeout),
		tracker.WithUserAgent(cfg.UserAgent),
		tracker.WithLogger(logger.Named("tracker")),
	)

	svc := service.New(client,
		service.WithNameDisplayLimit(cfg.NameDisplayLimit),
		service.WithLogger(logger.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeoutFor(trackerTimeout),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("tracker", baseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// writeTimeoutFor bounds a response by the slowest route, POST /items, which
// makes a submit call and then a refresh call. A disabled tracker timeout
// disables the write timeout too.
func writeTimeoutFor(trackerTimeout time.Duration) time.Duration {
	if trackerTimeout <= 0 {
		return 0
	}
	return 2*trackerTimeout + writeTimeoutMargin
}

// newHandler wires the documentation and API routes onto a fresh mux.
func newHandler(ctx context.Context, svc *service.Service) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(mux)
	return mux
}

// startFakeBackend serves an auto-registering in-memory tracking service on a
// loopback port and returns its base URL.
func startFakeBackend(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	fake := testbackend.New(testbackend.WithAutoRegister(true))
	fake.SetLogger(logger.Named("testbackend"))

	go func() {
		if err := fake.ServeListener(ctx, ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Error(ctx, "fake tracking service failed", logger.Error(err))
		}
	}()
	return "http://" + ln.Addr().String(), nil
}

func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateSessionsActive(svc.SessionCount())
		}
	}
}
