package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/runlab/internal/launcher"
	"github.com/aretw0/runlab/internal/registry"
	"github.com/aretw0/runlab/internal/run"
)

// LaunchOptions contains all the configuration for the launch command.
type LaunchOptions struct {
	Name       string
	Params     []string // forwarded key=value overrides, verbatim
	ConfigPath string
	Detach     bool
	Debug      bool
}

// Launch handles the 'launch' command logic: resolve config, create the run,
// spawn the trainer, index the run.
func Launch(ctx context.Context, opts LaunchOptions) error {
	logger := createLogger(opts.Debug)

	cfg, err := launcher.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	rec := run.New(cfg.RunsDir, opts.Name, time.Now())
	l := launcher.New(cfg, launcher.WithLogger(logger))

	printSystemMessage("Launching '%s'...", opts.Name)
	printSystemMessage("Output: %s", rec.Dir)

	if opts.Detach {
		if err := l.Launch(ctx, rec, opts.Params, true); err != nil {
			return err
		}
		printSystemMessage("Detached (pid %d, log %s).", rec.PID, rec.LogFile())
		indexRun(ctx, cfg.RunsDir, rec, logger)
		return nil
	}

	// Foreground: Launch blocks until the trainer exits. The pid file is on
	// disk before the wait begins, so the run is indexed and reported even
	// when the trainer itself fails.
	err = l.Launch(ctx, rec, opts.Params, false)
	if rec.PID != 0 {
		printSystemMessage("Run '%s' finished (pid %d).", opts.Name, rec.PID)
		indexRun(ctx, cfg.RunsDir, rec, logger)
	}
	return err
}

// indexRun records the run in the registry. The trainer is already running
// (or ran); a registry failure at this point must not look like a launch
// failure, so it is only logged.
func indexRun(ctx context.Context, runsDir string, rec *run.Record, logger *slog.Logger) {
	reg, err := registry.Open(registryPath(runsDir))
	if err != nil {
		logger.Warn("Registry Unavailable", "err", err)
		return
	}
	defer reg.Close()

	if err := reg.Record(ctx, rec); err != nil {
		logger.Warn("Run Not Indexed", "err", err)
	}
}
