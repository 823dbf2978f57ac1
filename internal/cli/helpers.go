package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/runlab/internal/logging"
)

// createLogger configures the application logger.
// In debug mode it writes to Stderr (to stay clear of the launch report on
// Stdout); otherwise it is silent.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// registryPath returns the index database location for a runs root.
func registryPath(runsDir string) string {
	return filepath.Join(runsDir, "index.db")
}
