package bootstrap

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const setupWithParallelism = `
import multiprocessing
from setuptools import setup

extra_compile_args += ["-DBT_THREADSAFE"]
parallel = 2 * multiprocessing.cpu_count()
build_jobs = 2 * multiprocessing.cpu_count()
setup(name="pybullet")
`

func TestPatchBuildScript(t *testing.T) {
	t.Run("Replaces All Occurrences", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setup.py")
		require.NoError(t, os.WriteFile(path, []byte(setupWithParallelism), 0644))

		count, err := PatchBuildScript(path)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		patched, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(patched), "2 * multiprocessing.cpu_count()")
		assert.Contains(t, string(patched), "parallel = 4")
		assert.Contains(t, string(patched), "build_jobs = 4")
	})

	t.Run("Leaves Unrelated Scripts Alone", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setup.py")
		original := "from setuptools import setup\nsetup(name='x')\n"
		require.NoError(t, os.WriteFile(path, []byte(original), 0644))

		count, err := PatchBuildScript(path)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, original, string(data))
	})

	t.Run("Missing Script Fails", func(t *testing.T) {
		_, err := PatchBuildScript(filepath.Join(t.TempDir(), "setup.py"))
		require.Error(t, err)
	})
}

// buildSdist produces a tar.gz with the usual sdist layout: a single
// versioned top-level directory holding setup.py.
func buildSdist(t *testing.T, topDir string, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: topDir + "/", Typeflag: tar.TypeDir, Mode: 0755,
	}))
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: topDir + "/" + name, Typeflag: tar.TypeReg,
			Mode: 0644, Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func sdistServer(t *testing.T, archive []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractArchive_RejectsTraversal(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := "evil"
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "../escape.txt", Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(content)),
	}))
	_, err := tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	archivePath := filepath.Join(t.TempDir(), "evil.tar.gz")
	require.NoError(t, os.WriteFile(archivePath, buf.Bytes(), 0644))

	_, err = extractArchive(archivePath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes destination")
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("install step uses sh")
	}

	archive := buildSdist(t, "pybullet-2.8.1", map[string]string{
		"setup.py": setupWithParallelism,
	})
	srv := sdistServer(t, archive)

	t.Run("Patches Then Installs Then Cleans Up", func(t *testing.T) {
		workDir := t.TempDir()
		marker := filepath.Join(t.TempDir(), "installed.txt")

		err := Run(context.Background(), Options{
			URL:     srv.URL,
			WorkDir: workDir,
			// The install stand-in snapshots the (already patched) setup.py.
			InstallCommand: []string{"sh", "-c", "cp setup.py " + marker},
		})
		require.NoError(t, err)

		installed, err := os.ReadFile(marker)
		require.NoError(t, err)
		assert.NotContains(t, string(installed), "2 * multiprocessing.cpu_count()")
		assert.Contains(t, string(installed), "parallel = 4")

		_, statErr := os.Stat(filepath.Join(workDir, "pybullet-2.8.1"))
		assert.True(t, os.IsNotExist(statErr), "extracted tree should be removed")
	})

	t.Run("Keep Leaves The Tree", func(t *testing.T) {
		workDir := t.TempDir()
		err := Run(context.Background(), Options{
			URL:            srv.URL,
			WorkDir:        workDir,
			InstallCommand: []string{"true"},
			Keep:           true,
		})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(workDir, "pybullet-2.8.1", "setup.py"))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "2 * multiprocessing.cpu_count()")
	})

	t.Run("Install Failure Propagates", func(t *testing.T) {
		err := Run(context.Background(), Options{
			URL:            srv.URL,
			WorkDir:        t.TempDir(),
			InstallCommand: []string{"false"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "install failed")
	})

	t.Run("Download Failure Propagates", func(t *testing.T) {
		missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		t.Cleanup(missing.Close)

		err := Run(context.Background(), Options{
			URL:            missing.URL,
			WorkDir:        t.TempDir(),
			InstallCommand: []string{"true"},
		})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unexpected status"))
	})
}
