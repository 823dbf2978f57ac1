// Package bootstrap prepares the build environment for the physics-simulation
// dependency: it downloads the package's source distribution, caps the build
// parallelism its setup script derives from the CPU count, installs it, and
// removes the extracted tree.
package bootstrap

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aretw0/runlab/internal/logging"
)

// DefaultPackageURL is the pybullet source distribution installed by default.
const DefaultPackageURL = "https://files.pythonhosted.org/packages/source/p/pybullet/pybullet-2.8.1.tar.gz"

// cpuCountExpr is the parallelism expression patched out of the package's
// setup script. Building with 2x the core count exhausts memory on shared
// machines, so it is capped to a fixed constant.
const (
	cpuCountExpr  = "2 * multiprocessing.cpu_count()"
	cpuCountFixed = "4"
)

// Options configures a bootstrap pass.
type Options struct {
	URL            string   // source distribution to fetch; DefaultPackageURL if empty
	WorkDir        string   // where the tree is extracted; os.TempDir() if empty
	InstallCommand []string // defaults to {"pip", "install", "."}
	Keep           bool     // leave the extracted tree in place
	Logger         *slog.Logger
}

// Run performs the full bootstrap sequence: download, extract, patch,
// install, clean up. Any failure aborts immediately; nothing is retried.
func Run(ctx context.Context, opts Options) error {
	if opts.URL == "" {
		opts.URL = DefaultPackageURL
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	if len(opts.InstallCommand) == 0 {
		opts.InstallCommand = []string{"pip", "install", "."}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Downloading Package", "url", opts.URL)
	archive, err := download(ctx, opts.URL)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	logger.Info("Extracting", "workdir", opts.WorkDir)
	srcDir, err := extractArchive(archive, opts.WorkDir)
	if err != nil {
		return err
	}
	if !opts.Keep {
		defer os.RemoveAll(srcDir)
	}

	replaced, err := PatchBuildScript(filepath.Join(srcDir, "setup.py"))
	if err != nil {
		return err
	}
	logger.Info("Patched Build Script", "replacements", replaced)

	logger.Info("Installing", "dir", srcDir, "command", strings.Join(opts.InstallCommand, " "))
	if err := install(ctx, srcDir, opts.InstallCommand); err != nil {
		return err
	}

	logger.Info("Bootstrap Complete", "kept", opts.Keep)
	return nil
}

// download fetches the archive to a temp file and returns its path.
func download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download package: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download package: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "runlab-sdist-*.tar.gz")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save package: %w", err)
	}
	return tmp.Name(), nil
}

// extractArchive unpacks a tar.gz archive into destRoot and returns the path
// of the archive's single top-level directory.
func extractArchive(archivePath, destRoot string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to read archive: %w", err)
	}
	defer gz.Close()

	var topDir string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read archive entry: %w", err)
		}

		name := filepath.Clean(hdr.Name)
		if name == "." || strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return "", fmt.Errorf("archive entry escapes destination: %s", hdr.Name)
		}
		target := filepath.Join(destRoot, name)

		if topDir == "" {
			root := strings.SplitN(name, string(filepath.Separator), 2)[0]
			topDir = filepath.Join(destRoot, root)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0777)
			if err != nil {
				return "", fmt.Errorf("failed to create file: %w", err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return "", fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
			}
			out.Close()
		default:
			// Symlinks and specials are not expected in an sdist; skip.
		}
	}

	if topDir == "" {
		return "", errors.New("archive is empty")
	}
	return topDir, nil
}

// PatchBuildScript replaces the CPU-count-derived parallelism expression with
// the fixed constant and returns how many occurrences were replaced. A script
// without the expression is left untouched.
func PatchBuildScript(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read build script: %w", err)
	}

	count := strings.Count(string(data), cpuCountExpr)
	if count == 0 {
		return 0, nil
	}

	patched := strings.ReplaceAll(string(data), cpuCountExpr, cpuCountFixed)
	if err := os.WriteFile(path, []byte(patched), 0644); err != nil {
		return 0, fmt.Errorf("failed to write build script: %w", err)
	}
	return count, nil
}

func install(ctx context.Context, dir string, command []string) error {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	return nil
}
