package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/smt-planner/pkg/lib/profile"
)

// Option applies a configuration option to the given config.
type Option func(s *serverConfig)

func WithAddress(addr string) Option {
	return func(sc *serverConfig) {
		sc.addr = addr
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(sc *serverConfig) {
		sc.logger = logger
	}
}

// WithProfiling serves pprof handlers next to the metrics.
func WithProfiling(profiling bool) Option {
	return func(sc *serverConfig) {
		sc.profiling = profiling
	}
}

func WithGatherer(g prometheus.Gatherer) Option {
	return func(sc *serverConfig) {
		sc.gatherer = g
	}
}

type serverConfig struct {
	logger    *logrus.Logger
	addr      string
	profiling bool
	gatherer  prometheus.Gatherer
}

func (sc *serverConfig) apply(options []Option) {
	for _, o := range options {
		o(sc)
	}
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		addr:     ":8080",
		logger:   logrus.New(),
		gatherer: prometheus.DefaultGatherer,
	}
}

// Handler returns the debug endpoints: /healthz, /metrics and, with
// profiling, /debug/pprof.
func Handler(options ...Option) http.Handler {
	sc := defaultServerConfig()
	sc.apply(options)
	return sc.handler()
}

func (sc serverConfig) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if sc.profiling {
		profile.RegisterHandlers(mux)
	}
	mux.Handle("/metrics", promhttp.HandlerFor(sc.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start serves the debug endpoints in the background until ctx is done.
// It returns the address actually listened on.
func Start(ctx context.Context, options ...Option) (string, error) {
	sc := defaultServerConfig()
	sc.apply(options)

	l, err := net.Listen("tcp", sc.addr)
	if err != nil {
		return "", err
	}
	s := &http.Server{
		Handler:           sc.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.Serve(l); err != nil && err != http.ErrServerClosed {
			sc.logger.WithError(err).Error("debug server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdown); err != nil {
			sc.logger.WithError(err).Warn("shutting down debug server")
		}
	}()
	sc.logger.WithField("address", l.Addr().String()).Info("serving metrics")
	return l.Addr().String(), nil
}
