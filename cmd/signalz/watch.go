package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/zoobzio/capitan"

	"github.com/zoobzio/signalz"
	sprom "github.com/zoobzio/signalz/pkg/prometheus"
)

var errBadSelector = errors.New("selector must be name=path")

func watchCmd() *cobra.Command {
	var selects []string

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Print selector values as FILE changes",
		Long: `Watch FILE and print each selector whenever its value changes.
Without --select the whole document is printed as "value".

Documents that fail to decode are reported and the previous state is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			defs, err := parseSelectors(selects)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd, cfg, args[0], defs)
		},
	}

	addCommonFlags(cmd)
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "Selector as name=path (repeatable)")
	cmd.Flags().Duration("debounce", signalz.DefaultDebounce, "Coalesce changes arriving within this window")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")

	return cmd
}

// parseSelectors turns name=path pairs into selector definitions.
func parseSelectors(pairs []string) ([]signalz.SelectorDef, error) {
	defs := make([]signalz.SelectorDef, 0, len(pairs))
	for _, pair := range pairs {
		name, path, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errBadSelector, pair)
		}
		defs = append(defs, signalz.SelectorDef{Name: name, Path: strings.TrimSpace(path)})
	}
	return defs, nil
}

func runWatch(ctx context.Context, cmd *cobra.Command, cfg Config, file string, defs []signalz.SelectorDef) error {
	level, _ := cfg.level()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := []signalz.Option{
		signalz.WithName(file),
		signalz.WithContext(ctx),
		signalz.WithSelectors(defs...),
	}

	var registry *prom.Registry
	if cfg.MetricsAddr != "" {
		registry = prom.NewRegistry()
		opts = append(opts, signalz.WithMetrics(sprom.New(sprom.WithRegistry(registry))))
	}

	sig, err := signalz.New(nil, opts...)
	if err != nil {
		return err
	}

	hookEvents(logger)
	defer capitan.Shutdown()

	if registry != nil {
		go serveMetrics(ctx, cfg.MetricsAddr, registry, logger)
	}

	out := newPrinter(cmd.OutOrStdout(), cfg.Output)
	render := func(name string) signalz.RenderFunc {
		return func(v any) {
			if err := out.printNamed(name, v); err != nil {
				logger.Error("failed to print", "selector", name, "error", err)
			}
		}
	}

	if len(defs) == 0 {
		defer sig.Value(render(signalz.ReservedName)).Close()
	}
	for _, d := range defs {
		b, err := sig.Select(d.Name, render(d.Name))
		if err != nil {
			return err
		}
		defer b.Close()
	}

	codec, _ := cfg.codec()
	feed := signalz.NewFeed(signalz.NewFileSource(file), sig).
		Codec(codec).
		Debounce(cfg.Debounce).
		ErrorHistorySize(10)

	if err := feed.Start(ctx); err != nil {
		if feed.State() == signalz.StateLoading {
			return err
		}
		logger.Warn("initial document failed", "file", file, "error", err)
	}

	<-ctx.Done()
	logger.Info("stopped", "state", feed.State().String(), "applied", feed.Applied())
	return nil
}

// hookEvents logs signalz events.
func hookEvents(logger *slog.Logger) {
	capitan.Hook(signalz.FeedStateChanged, func(_ context.Context, e *capitan.Event) {
		from, _ := signalz.KeyOldState.From(e)
		to, _ := signalz.KeyNewState.From(e)
		logger.Info("feed state changed", "from", from, "to", to)
	})
	capitan.Hook(signalz.FeedDecodeFailed, func(_ context.Context, e *capitan.Event) {
		msg, _ := signalz.KeyError.From(e)
		logger.Warn("document rejected, keeping previous state", "error", msg)
	})
	capitan.Hook(signalz.FeedApplyFailed, func(_ context.Context, e *capitan.Event) {
		msg, _ := signalz.KeyError.From(e)
		logger.Error("render failed", "error", msg)
	})
	capitan.Hook(signalz.ValueWritten, func(_ context.Context, e *capitan.Event) {
		observers, _ := signalz.KeyObservers.From(e)
		took, _ := signalz.KeyDuration.From(e)
		logger.Debug("state written", "observers", observers, "took", took)
	})
}

func serveMetrics(ctx context.Context, addr string, registry *prom.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}
