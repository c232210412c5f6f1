// Package profiler serves pprof on its own listener
package profiler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/forest33/arena/pkg/logger"
)

type Config struct {
	Host string
	Port int
}

var (
	once = sync.Once{}
	srv  *http.Server
)

// Start runs the profiler once per process
func Start(cfg *Config, log *logger.Logger) {
	once.Do(func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

		srv = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler: mux,
		}

		log.Info().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Msg("starting profiler")

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("failed to start profiler: %v", err)
			}
		}()
	})
}

func Stop(ctx context.Context) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
