package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aretw0/runlab/internal/launcher"
	"github.com/aretw0/runlab/internal/registry"
	"github.com/aretw0/runlab/internal/run"
)

// RunsOptions configures the list and show commands.
type RunsOptions struct {
	ConfigPath string
	Debug      bool
}

// ListRuns prints all indexed runs, newest first.
func ListRuns(ctx context.Context, opts RunsOptions) error {
	cfg, err := launcher.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.RunsDir); os.IsNotExist(err) {
		fmt.Println("No runs recorded.")
		return nil
	}

	reg, err := registry.Open(registryPath(cfg.RunsDir))
	if err != nil {
		return err
	}
	defer reg.Close()

	entries, err := reg.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLAUNCHED\tPID\tSTATUS\tSIZE\tDIR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			e.Name,
			humanize.Time(e.CreatedAt),
			e.PID,
			runStatus(e.PID),
			dirSize(e.Dir),
			e.Dir,
		)
	}
	return w.Flush()
}

// ShowRun prints the details of one run, resolved by id or name. When the
// registry has no matching row the runs root is scanned for a manifest, so a
// run launched while the index was unavailable is still inspectable.
func ShowRun(ctx context.Context, key string, opts RunsOptions) error {
	cfg, err := launcher.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	rec, err := resolveRun(ctx, cfg.RunsDir, key)
	if err != nil {
		return err
	}

	fmt.Printf("Name:       %s\n", rec.Name)
	fmt.Printf("ID:         %s\n", rec.ID)
	fmt.Printf("Directory:  %s\n", rec.Dir)
	fmt.Printf("Launched:   %s (%s)\n", rec.CreatedAt.Format(time.RFC3339), humanize.Time(rec.CreatedAt))
	fmt.Printf("PID:        %d (%s)\n", rec.PID, runStatus(rec.PID))
	fmt.Printf("Detached:   %v\n", rec.Detached)
	if len(rec.Command) > 0 {
		fmt.Printf("Command:    %s\n", strings.Join(rec.Command, " "))
	}
	if len(rec.Params) > 0 {
		fmt.Printf("Params:     %s\n", strings.Join(rec.Params, " "))
	}
	return nil
}

func resolveRun(ctx context.Context, runsDir, key string) (*run.Record, error) {
	reg, err := registry.Open(registryPath(runsDir))
	if err == nil {
		defer reg.Close()
		if e, err := reg.Find(ctx, key); err == nil {
			if rec, err := run.Load(e.Dir); err == nil {
				return rec, nil
			}
			// Manifest gone but the index row survives; reconstruct what we can.
			return &run.Record{
				ID: e.ID, Name: e.Name, Timestamp: e.Timestamp,
				Dir: e.Dir, PID: e.PID, CreatedAt: e.CreatedAt,
			}, nil
		} else if !errors.Is(err, registry.ErrNotFound) {
			return nil, err
		}
	}

	// Fallback: scan run directories for a matching manifest.
	dirs, err := os.ReadDir(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs root: %w", err)
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		if !d.IsDir() {
			continue
		}
		rec, err := run.Load(filepath.Join(runsDir, d.Name()))
		if err != nil {
			continue
		}
		if rec.ID == key || rec.Name == key {
			return rec, nil
		}
	}
	return nil, run.ErrRunNotFound
}

// runStatus reports whether the recorded pid still maps to a live process.
// Best effort: an unsignalable pid is reported as stopped.
func runStatus(pid int) string {
	if pid <= 0 {
		return "unknown"
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return "stopped"
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return "stopped"
	}
	return "running"
}

// dirSize sums the regular files under a run directory.
func dirSize(dir string) string {
	var total uint64
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if info, err := d.Info(); err == nil && d.Type().IsRegular() {
			total += uint64(info.Size())
		}
		return nil
	})
	return humanize.Bytes(total)
}
