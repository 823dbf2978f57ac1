package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/runlab/internal/bootstrap"
	"github.com/aretw0/runlab/internal/logging"
)

// BootstrapOptions configures the bootstrap command.
type BootstrapOptions struct {
	URL     string
	WorkDir string
	Keep    bool
	Debug   bool
}

// Bootstrap handles the 'bootstrap' command logic.
func Bootstrap(ctx context.Context, opts BootstrapOptions) error {
	// Bootstrap progress is the command's whole output, so it logs at Info
	// even without --debug.
	logger := logging.New(slog.LevelInfo)
	if opts.Debug {
		logger = logging.New(slog.LevelDebug)
	}

	return bootstrap.Run(ctx, bootstrap.Options{
		URL:     opts.URL,
		WorkDir: opts.WorkDir,
		Keep:    opts.Keep,
		Logger:  logger,
	})
}
