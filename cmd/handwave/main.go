// handwave: plays a scripted gesture on the Dreamer whole-body controller.
//
// It connects to the controller, holds the default posture until the
// controller is ready, then asks before each stage of the gesture.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/teslashibe/go-dreamer/internal/config"
	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/controller"
	"github.com/teslashibe/go-dreamer/pkg/gesture"
	"github.com/teslashibe/go-dreamer/pkg/player"
	"github.com/teslashibe/go-dreamer/pkg/web"
)

const handshakeTimeout = 10 * time.Second

type options struct {
	cfg        config.Config
	gesture    string
	dashboard  bool
	webConfirm bool
	yes        bool
	waves      int
	list       bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Init(opts.cfg.LogLevel)

	if opts.list {
		for _, name := range gesture.ListEmbedded() {
			fmt.Println(name)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted")
			return
		}
		log.Error("handwave failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags layers flags over the environment configuration.
func parseFlags() (options, error) {
	cfg, err := config.Load()
	if err != nil {
		return options{}, err
	}

	var o options
	flag.StringVar(&cfg.ControllerURL, "controller", cfg.ControllerURL, "Controller base URL")
	flag.StringVar(&cfg.Transport, "transport", cfg.Transport, "Controller transport: http or ws")
	flag.Float64Var(&cfg.TickHz, "rate", cfg.TickHz, "Control tick rate in Hz")
	flag.DurationVar(&cfg.StatusPoll, "status-poll", cfg.StatusPoll, "Controller status poll interval (http transport)")
	flag.StringVar(&cfg.DashboardPort, "dashboard-port", cfg.DashboardPort, "Dashboard port")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&o.gesture, "gesture", "handwave", "Built-in gesture name or path to a gesture YAML file")
	flag.BoolVar(&o.dashboard, "dashboard", false, "Serve the web dashboard")
	flag.BoolVar(&o.webConfirm, "web-confirm", false, "Answer prompts from the dashboard instead of the terminal")
	flag.BoolVar(&o.yes, "yes", false, "Do not prompt; play -waves repetitions")
	flag.IntVar(&o.waves, "waves", 1, "Number of waves with -yes")
	flag.BoolVar(&o.list, "list", false, "List built-in gestures and exit")
	flag.Parse()

	cfg.Transport = strings.ToLower(cfg.Transport)
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	if o.webConfirm {
		o.dashboard = true
	}
	o.cfg = cfg
	return o, nil
}

func loadGesture(name string) (*gesture.Gesture, error) {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return gesture.LoadFile(name)
	}
	return gesture.LoadEmbedded(name)
}

func connect(ctx context.Context, cfg config.Config) (controller.Controller, error) {
	switch cfg.Transport {
	case "ws":
		return controller.DialWS(ctx, cfg.WebSocketURL())
	default:
		c := controller.NewHTTPController(cfg.ControllerURL)
		go c.Monitor(ctx, cfg.StatusPoll)
		return c, nil
	}
}

func run(ctx context.Context, o options) error {
	g, err := loadGesture(o.gesture)
	if err != nil {
		return err
	}
	log.Info("gesture loaded", "gesture", g.Name, "steps", len(g.Steps))

	ctrl, err := connect(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	posture := g.DefaultPosture
	if posture == nil {
		posture = controller.DefaultPosture
	}
	log.Info("connecting to controller", "url", o.cfg.ControllerURL, "transport", o.cfg.Transport)
	if err := controller.Handshake(ctx, ctrl, posture, handshakeTimeout); err != nil {
		return err
	}

	var sink player.Sink = ctrl
	var dash *web.Server
	if o.dashboard {
		dash = web.NewServer(web.Options{Port: o.cfg.DashboardPort})
		dash.SetGesture(g)
		dash.SetReadiness(ctrl)
		go func() {
			if err := dash.Start(ctx); err != nil {
				log.Warn("dashboard stopped", "error", err)
			}
		}()
		sink = controller.NewFanOut(ctrl, dash)
	}

	var confirm gesture.Confirmer
	switch {
	case o.yes:
		confirm = gesture.AutoConfirm(o.waves)
	case o.webConfirm:
		confirm = dash.Confirmer()
	default:
		confirm = &gesture.TerminalConfirmer{In: os.Stdin, Out: os.Stdout}
	}

	p := player.New(sink, ctrl, player.Options{Rate: o.cfg.TickHz})
	seq := gesture.NewSequence(g, p, confirm)
	if dash != nil {
		seq.OnStep = dash.OnStep
	}

	rep, err := seq.Run(ctx)
	if err != nil {
		return err
	}
	if rep.Declined {
		log.Info("demo not started")
		return nil
	}
	log.Info("gesture done", "run_id", rep.RunID, "plays", len(rep.Plays))
	return nil
}
