package run

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
	"gopkg.in/yaml.v3"
)

// DirTimeFormat is the strftime layout used for run directory names.
// Second granularity; the double underscore separates date from time.
const DirTimeFormat = "%Y_%m_%d__%H_%M_%S"

const (
	pidFileName      = "pid"
	manifestFileName = "run.yaml"
	logFileName      = "slurm.out"
)

// Record describes a single experiment run. It is written once, at launch
// time, and never updated; the run directory is the long-lived artifact.
type Record struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Timestamp string    `yaml:"timestamp"`
	Dir       string    `yaml:"dir"`
	PID       int       `yaml:"pid"`
	Command   []string  `yaml:"command"`
	Params    []string  `yaml:"params,omitempty"`
	Detached  bool      `yaml:"detached"`
	CreatedAt time.Time `yaml:"created_at"`
}

// New builds a Record for the given experiment name under runsRoot.
// The directory is not created yet; see CreateDir.
func New(runsRoot, name string, now time.Time) *Record {
	ts := strftime.Format(DirTimeFormat, now)
	return &Record{
		ID:        uuid.NewString(),
		Name:      name,
		Timestamp: ts,
		Dir:       filepath.Join(runsRoot, ts+"__"+name),
		CreatedAt: now.UTC(),
	}
}

// CreateDir materializes the run directory. The runs root is created
// idempotently, but the run directory itself must not pre-exist: a collision
// (same name launched twice within one second) is surfaced as-is.
func (r *Record) CreateDir() error {
	if err := os.MkdirAll(filepath.Dir(r.Dir), 0755); err != nil {
		return fmt.Errorf("failed to ensure runs root: %w", err)
	}
	if err := os.Mkdir(r.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	return nil
}

// PIDFile returns the path of the plain-text pid file inside the run directory.
func (r *Record) PIDFile() string {
	return filepath.Join(r.Dir, pidFileName)
}

// ManifestFile returns the path of the YAML manifest inside the run directory.
func (r *Record) ManifestFile() string {
	return filepath.Join(r.Dir, manifestFileName)
}

// LogFile returns the path the trainer's output is redirected to when the run
// is detached.
func (r *Record) LogFile() string {
	return filepath.Join(r.Dir, logFileName)
}

// WritePID stores the spawned process id on the record and persists it as
// plain text.
func (r *Record) WritePID(pid int) error {
	r.PID = pid
	if err := os.WriteFile(r.PIDFile(), []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// WriteManifest persists the record as YAML next to the pid file.
func (r *Record) WriteManifest() error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal run manifest: %w", err)
	}
	if err := os.WriteFile(r.ManifestFile(), data, 0644); err != nil {
		return fmt.Errorf("failed to write run manifest: %w", err)
	}
	return nil
}

// Load reads the manifest back from a run directory.
func Load(dir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read run manifest: %w", err)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse run manifest: %w", err)
	}
	return &rec, nil
}

// ReadPID parses the pid file of a run directory.
func ReadPID(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, pidFileName))
	if err != nil {
		return 0, fmt.Errorf("failed to read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pid file is not numeric: %w", err)
	}
	return pid, nil
}
