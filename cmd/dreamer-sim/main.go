// dreamer-sim: a simulated whole-body controller for dry runs.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-dreamer/internal/config"
	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error("bad configuration", "error", err)
		os.Exit(2)
	}

	port := flag.String("port", cfg.SimPort, "HTTP port")
	readyAfter := flag.Duration("ready-after", time.Second, "Report not ready for this long after start")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s := sim.New(sim.Options{ReadyAfter: *readyAfter})
	if err := s.Listen(ctx, ":"+*port); err != nil {
		log.Error("simulator stopped", "error", err)
		os.Exit(1)
	}
	st := s.Stats()
	log.Info("simulator done", "commands", st.Commands, "rejected", st.Rejected, "faults", st.Faults)
}
