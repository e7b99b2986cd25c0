package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/faultline/internal/config"
	"github.com/vango-dev/faultline/internal/errors"
	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/devtools"
	"github.com/vango-dev/faultline/pkg/fault"
	"github.com/vango-dev/faultline/pkg/host"
	"github.com/vango-dev/faultline/pkg/lifecycle"
	"github.com/vango-dev/faultline/pkg/reactive"
)

// scenario mounts components on rt and triggers one kind of failure.
type scenario struct {
	summary string
	run     func(rt *appRuntime) error
}

var scenarios = map[string]scenario{
	"hook": {
		summary: "mounted hook fails; the parent observes it and lets it through",
		run:     runHookScenario,
	},
	"capture": {
		summary: "event handler fails; the nearest ancestor stops propagation",
		run:     runCaptureScenario,
	},
	"handler": {
		summary: "global handler rethrows one error and fails with another",
		run:     runHandlerScenario,
	},
	"deferred": {
		summary: "event handler returns a future that is rejected later",
		run:     runDeferredScenario,
	},
	"watcher": {
		summary: "watcher callback fails after its signal changes",
		run:     runWatcherScenario,
	},
	"render": {
		summary: "render panics with a non-error value",
		run:     runRenderScenario,
	},
	"nexttick": {
		summary: "a nextTick callback fails",
		run:     runNextTickScenario,
	},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func demoCmd() *cobra.Command {
	var (
		configPath string
		serve      bool
		production bool
		hostKind   string
	)

	cmd := &cobra.Command{
		Use:   "demo [scenario...]",
		Short: "Run failure scenarios through the error router",
		Long: `Run failure scenarios against a small component tree and show where
each error ends up.

Scenarios:
` + scenarioHelp() + `
With no arguments every scenario runs. With --serve the devtools server
keeps running afterwards so the overlay, /metrics and /api/reports can be
inspected.

Examples:
  faultline demo
  faultline demo capture deferred
  faultline demo --host=headless render
  faultline demo --serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := demoConfig(configPath)
			if err != nil {
				return err
			}
			if production {
				cfg.Production = true
			}
			switch hostKind {
			case "":
			case "browser":
				cfg.Host = config.HostConfig{Browser: true}
			case "embedded":
				cfg.Host = config.HostConfig{Embedded: true}
			case "headless":
				cfg.Host = config.HostConfig{Headless: true}
			default:
				return errors.Newf(errors.CategoryCLI, "unknown host %q", hostKind).
					WithSuggestion("Use browser, embedded or headless")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), slog.Default(), cfg, args, serve)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to faultline.json (default: nearest, or built-in defaults)")
	cmd.Flags().BoolVar(&serve, "serve", false, "Keep the devtools server running after the scenarios")
	cmd.Flags().BoolVar(&production, "production", false, "Suppress development warnings")
	cmd.Flags().StringVar(&hostKind, "host", "", "Override host detection: browser, embedded or headless")
	return cmd
}

func scenarioHelp() string {
	var b strings.Builder
	for _, name := range scenarioNames() {
		fmt.Fprintf(&b, "  %-9s %s\n", name, scenarios[name].summary)
	}
	return b.String()
}

// demoConfig loads path, or the nearest faultline.json, or the defaults when
// there is none.
func demoConfig(path string) (*config.Config, error) {
	cfg, err := loadConfig(path)
	if err == nil {
		return cfg, nil
	}
	var fe *errors.FaultError
	if path == "" && stderrors.As(err, &fe) && fe.Code == "F100" {
		cfg = config.New()
		cfg.Host = config.HostConfig{Browser: true}
		return cfg, nil
	}
	return nil, err
}

func runDemo(ctx context.Context, out io.Writer, logger *slog.Logger, cfg *config.Config, names []string, serve bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(names) == 0 {
		names = scenarioNames()
	}
	for _, name := range names {
		if _, ok := scenarios[name]; !ok {
			return errors.New("F301").WithDetail(fmt.Sprintf("%q is not one of: %s", name, strings.Join(scenarioNames(), ", ")))
		}
	}

	rt, err := newRuntime(ctx, cfg, out, logger)
	if err != nil {
		return err
	}
	if !host.HasChannel(cfg.Probe()) {
		warn(out, "No diagnostic channel on this host; unhandled errors are re-raised")
	}
	ctx, cancel := context.WithCancel(ctx)
	archived := rt.startArchive(ctx)
	defer func() {
		cancel()
		<-archived
	}()

	var srv *devtools.Server
	if serve {
		s := rt.devtoolsServer()
		srvErr := make(chan error, 1)
		go func() { srvErr <- s.ListenAndServe() }()
		select {
		case err := <-srvErr:
			if err != nil {
				return errors.New("F200").Wrap(err)
			}
		case <-time.After(100 * time.Millisecond):
		}
		srv = s
		success(out, "Devtools on http://%s (overlay %s)", cfg.Devtools.Addr, cfg.Devtools.OverlayPath)
	}

	printBanner(out)
	for _, name := range names {
		fmt.Fprintln(out)
		info(out, "── %s: %s", name, scenarios[name].summary)
		if err := runScenario(rt, scenarios[name]); err != nil {
			errorMsg(out, "%s: %v", errors.New("F202").FormatCompact(), err)
		}
	}

	fmt.Fprintln(out)
	success(out, "%d error(s) reached the diagnostic channel", rt.recorder.Total())

	if srv == nil {
		return nil
	}
	info(out, "Press Ctrl+C to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// runScenario runs s and drains the lane. An error re-raised by the
// diagnostic fallback is returned instead of crashing the demo.
func runScenario(rt *appRuntime, s scenario) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	if err := s.run(rt); err != nil {
		return err
	}
	rt.router.Lane().Drain()
	return nil
}

func mountApp(rt *appRuntime, opts component.Options) (component.Handle, error) {
	if opts.Name == "" {
		opts.Name = "App"
	}
	return rt.tree.Mount(component.None, opts)
}

func runHookScenario(rt *appRuntime) error {
	app, err := mountApp(rt, component.Options{
		ErrorCaptured: []component.CaptureHook{
			func(self component.Handle, err error, origin component.Handle, info string) (component.Verdict, error) {
				rt.logger.Info("observed", "at", rt.tree.Name(self), "from", rt.tree.Name(origin), "info", info)
				return component.Continue, nil
			},
		},
	})
	if err != nil {
		return err
	}
	panel, err := rt.tree.Mount(app, component.Options{
		Name: "Panel",
		Lifecycle: map[string][]component.LifecycleHook{
			lifecycle.Mounted: {func(component.Handle) (any, error) {
				return nil, stderrors.New("panel data unavailable")
			}},
		},
	})
	if err != nil {
		return err
	}
	rt.runner.CallHook(panel, lifecycle.Mounted)
	return nil
}

func runCaptureScenario(rt *appRuntime) error {
	app, err := mountApp(rt, component.Options{
		ErrorCaptured: []component.CaptureHook{
			func(self component.Handle, err error, origin component.Handle, info string) (component.Verdict, error) {
				rt.logger.Info("suppressed", "at", rt.tree.Name(self), "error", err)
				return component.Stop, nil
			},
		},
	})
	if err != nil {
		return err
	}
	button, err := rt.tree.Mount(app, component.Options{
		Name: "SaveButton",
		Listeners: map[string][]component.EventHandler{
			"click": {func(_ component.Handle, args []any) (any, error) {
				return nil, fmt.Errorf("save %v: permission denied", args[0])
			}},
		},
	})
	if err != nil {
		return err
	}
	rt.runner.Emit(button, "click", "draft-1")
	return nil
}

func runHandlerScenario(rt *appRuntime) error {
	cfg := rt.router.Config()
	cfg.SetErrorHandler(func(err error, origin component.Handle, info string) error {
		if strings.Contains(err.Error(), "rethrow") {
			return err
		}
		return fmt.Errorf("handler could not report %q", err.Error())
	})
	defer cfg.SetErrorHandler(nil)

	app, err := mountApp(rt, component.Options{Name: "Checkout"})
	if err != nil {
		return err
	}
	rt.runner.Render(app, func() (any, error) { return nil, stderrors.New("rethrow me") })
	rt.runner.Render(app, func() (any, error) { return nil, stderrors.New("tax service down") })
	return nil
}

func runDeferredScenario(rt *appRuntime) error {
	var pending *fault.Future
	app, err := mountApp(rt, component.Options{
		Name: "Uploader",
		Listeners: map[string][]component.EventHandler{
			"submit": {func(component.Handle, []any) (any, error) {
				pending = fault.NewFuture(rt.router.Lane())
				return pending, nil
			}},
		},
	})
	if err != nil {
		return err
	}
	rt.runner.Emit(app, "submit")
	// Wrapping the same future again must not deliver the rejection twice.
	rt.router.Invoke(func(any, []any) (any, error) { return pending, nil }, nil, nil, app, `event handler for "submit"`)
	return pending.Reject(stderrors.New("upload timed out"))
}

func runWatcherScenario(rt *appRuntime) error {
	app, err := mountApp(rt, component.Options{Name: "Cart"})
	if err != nil {
		return err
	}
	items := reactive.NewSignal(rt.gate, 0)
	rt.runner.Watch(app, "items", func() (any, error) {
		return items.Get(), nil
	}, func(next, _ any) error {
		if next.(int) > 3 {
			return fmt.Errorf("cart limit exceeded: %d items", next)
		}
		return nil
	}, lifecycle.WatchOptions{})
	items.Set(5)
	return nil
}

func runRenderScenario(rt *appRuntime) error {
	app, err := mountApp(rt, component.Options{Name: "Chart"})
	if err != nil {
		return err
	}
	rt.runner.Render(app, func() (any, error) {
		panic("chart has no series")
	})
	return nil
}

func runNextTickScenario(rt *appRuntime) error {
	app, err := mountApp(rt, component.Options{Name: "Toast"})
	if err != nil {
		return err
	}
	rt.runner.NextTick(app, func() error {
		return stderrors.New("toast container missing")
	})
	return nil
}
