package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/aretw0/runlab/internal/logging"
	"github.com/aretw0/runlab/internal/run"
)

// Launcher spawns the configured training entry point for a run.
type Launcher struct {
	cfg    Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// Option configures the launcher.
type Option func(*Launcher)

// WithLogger injects the application logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// WithOutput redirects the foreground trainer's stdout/stderr, mainly for
// tests. Detached runs always write to the run's log file.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// New creates a Launcher for the given config.
func New(cfg Config, opts ...Option) *Launcher {
	l := &Launcher{
		cfg:    cfg,
		logger: logging.NewNop(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch creates the run directory and spawns the trainer.
//
// params are forwarded verbatim, in order, after the output-directory
// parameter; no schema is assumed or enforced here (rejection of bad values
// is the trainer's concern).
//
// In foreground mode the call blocks until the trainer exits and returns its
// error. In detached mode the trainer is placed in its own session with
// stdout/stderr redirected to the run's log file, and the call returns as
// soon as the process has started. Both modes write the pid file and the
// manifest before returning.
func (l *Launcher) Launch(ctx context.Context, rec *run.Record, params []string, detach bool) error {
	if err := rec.CreateDir(); err != nil {
		return err
	}

	args := make([]string, 0, len(l.cfg.Trainer.Args)+1+len(params))
	args = append(args, l.cfg.Trainer.Args...)
	args = append(args, "experiment_dir="+rec.Dir)
	args = append(args, params...)

	rec.Command = append([]string{l.cfg.Trainer.Command}, args...)
	rec.Params = params
	rec.Detached = detach

	if detach {
		return l.launchDetached(rec, args)
	}
	return l.launchForeground(ctx, rec, args)
}

func (l *Launcher) launchForeground(ctx context.Context, rec *run.Record, args []string) error {
	cmd := exec.CommandContext(ctx, l.cfg.Trainer.Command, args...)
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	cmd.Env = l.environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start trainer: %w", err)
	}
	if err := l.recordSpawn(rec, cmd.Process.Pid); err != nil {
		return err
	}

	l.logger.Info("Trainer Started", "pid", rec.PID, "dir", rec.Dir)
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("trainer exited: %w", err)
	}
	return nil
}

func (l *Launcher) launchDetached(rec *run.Record, args []string) error {
	logFile, err := os.Create(rec.LogFile())
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	// No CommandContext here: the child must outlive the launcher, so it is
	// never tied to our context.
	cmd := exec.Command(l.cfg.Trainer.Command, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	cmd.Env = l.environ()
	detachSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start trainer: %w", err)
	}
	pid := cmd.Process.Pid
	if err := l.recordSpawn(rec, pid); err != nil {
		return err
	}

	// The launcher will not wait; let go of the process handle.
	if err := cmd.Process.Release(); err != nil {
		l.logger.Warn("Process Release Failed", "err", err)
	}

	l.logger.Info("Trainer Detached", "pid", pid, "dir", rec.Dir, "log", rec.LogFile())
	return nil
}

// recordSpawn persists the pid file and the manifest once the process exists.
func (l *Launcher) recordSpawn(rec *run.Record, pid int) error {
	if err := rec.WritePID(pid); err != nil {
		return err
	}
	if err := rec.WriteManifest(); err != nil {
		return err
	}
	return nil
}

func (l *Launcher) environ() []string {
	env := os.Environ()
	for k, v := range l.cfg.Trainer.Env {
		env = append(env, k+"="+v)
	}
	return env
}
