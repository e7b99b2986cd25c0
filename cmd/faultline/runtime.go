package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/faultline/internal/config"
	"github.com/vango-dev/faultline/internal/errors"
	"github.com/vango-dev/faultline/pkg/archive"
	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/devtools"
	"github.com/vango-dev/faultline/pkg/fault"
	"github.com/vango-dev/faultline/pkg/host"
	"github.com/vango-dev/faultline/pkg/lifecycle"
	"github.com/vango-dev/faultline/pkg/reactive"
	"go.opentelemetry.io/otel"
)

// appRuntime wires a component tree to every diagnostic surface the
// configuration enables.
type appRuntime struct {
	cfg      *config.Config
	logger   *slog.Logger
	tree     *component.Tree
	gate     *reactive.Gate
	router   *fault.Router
	runner   *lifecycle.Runner
	recorder *host.Recorder
	overlay  *devtools.Overlay
	archive  *archive.S3Channel
	registry *prometheus.Registry
}

func newRuntime(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) (*appRuntime, error) {
	rt := &appRuntime{
		cfg:      cfg,
		logger:   logger,
		tree:     component.NewTree(),
		gate:     reactive.NewGate(),
		recorder: host.NewRecorder(256),
		registry: prometheus.NewRegistry(),
	}
	rt.overlay = devtools.NewOverlay(rt.recorder).WithLogger(logger.With("component", "devtools.overlay"))

	// The overlay records into rt.recorder itself.
	channels := host.Multi{host.NewConsole(out, !cfg.Production), rt.overlay}
	if cfg.Archive.Enabled() {
		archiveCfg := archive.Config{
			Bucket:        cfg.Archive.Bucket,
			Prefix:        cfg.Archive.Prefix,
			MaxBatch:      cfg.Archive.MaxBatch,
			FlushInterval: cfg.Archive.FlushDuration(),
			Logger:        logger,
		}
		if err := archiveCfg.Validate(); err != nil {
			return nil, errors.New("F203").Wrap(err)
		}
		client, err := archive.NewClient(ctx, archive.ClientConfig{
			Region:   cfg.Archive.Region,
			Endpoint: cfg.Archive.Endpoint,
		})
		if err != nil {
			return nil, errors.New("F203").Wrap(err)
		}
		rt.archive = archive.NewS3Channel(client, archiveCfg)
		channels = append(channels, rt.archive)
	}

	metrics := fault.NewMetrics(
		fault.WithNamespace(cfg.Metrics.Namespace),
		fault.WithSubsystem(cfg.Metrics.Subsystem),
		fault.WithRegistry(rt.registry),
	)

	rt.router = fault.New(rt.tree,
		fault.WithGate(rt.gate),
		fault.WithProduction(cfg.Production),
		fault.WithLogger(logger),
		fault.WithProbe(cfg.Probe()),
		fault.WithChannel(channels),
		fault.WithMetrics(metrics),
		fault.WithTracer(otel.Tracer(cfg.Tracing.TracerName)),
	)
	rt.runner = lifecycle.NewRunner(rt.tree, rt.router, rt.gate)
	return rt, nil
}

// devtoolsServer builds the HTTP server exposing the overlay, the recorded
// reports and the metrics registry.
func (rt *appRuntime) devtoolsServer() *devtools.Server {
	return devtools.NewServer(devtools.Config{
		Addr:        rt.cfg.Devtools.Addr,
		OverlayPath: rt.cfg.Devtools.OverlayPath,
		Logger:      rt.logger,
	}, rt.overlay, rt.recorder, rt.registry)
}

// startArchive runs the archive flush loop until ctx is done. It is a no-op
// when no bucket is configured.
func (rt *appRuntime) startArchive(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if rt.archive == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		_ = rt.archive.Run(ctx)
	}()
	return done
}
