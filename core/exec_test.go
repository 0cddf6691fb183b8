package core

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T, path string) (*PathResolver, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return &PathResolver{
		Fs: fs,
		Getenv: func(key string) string {
			if key == "PATH" {
				return path
			}
			return ""
		},
		Fallback: []string{"/fallback"},
	}, fs
}

func writeExecutable(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, fs.Chmod(path, 0755))
}

func TestLookPathSearchesInOrder(t *testing.T) {
	r, fs := testResolver(t, "/usr/bin:/bin")
	writeExecutable(t, fs, "/bin/tool")
	writeExecutable(t, fs, "/usr/bin/tool")

	path, err := r.LookPath("tool")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/tool", path)
}

func TestLookPathNotFound(t *testing.T) {
	r, _ := testResolver(t, "/usr/bin:/bin")

	_, err := r.LookPath("nosuchprogram")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookPathSkipsNonExecutable(t *testing.T) {
	r, fs := testResolver(t, "/usr/bin:/bin")
	require.NoError(t, afero.WriteFile(fs, "/usr/bin/tool", []byte("data"), 0644))
	require.NoError(t, fs.Chmod("/usr/bin/tool", 0644))
	writeExecutable(t, fs, "/bin/tool")

	path, err := r.LookPath("tool")
	require.NoError(t, err)
	assert.Equal(t, "/bin/tool", path)
}

func TestLookPathDirectPath(t *testing.T) {
	r, fs := testResolver(t, "/bin")
	writeExecutable(t, fs, "/opt/tool")

	path, err := r.LookPath("/opt/tool")
	require.NoError(t, err)
	assert.Equal(t, "/opt/tool", path)

	_, err = r.LookPath("/opt/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookPathFallback(t *testing.T) {
	r, fs := testResolver(t, "") // $PATH unset
	writeExecutable(t, fs, "/fallback/tool")

	path, err := r.LookPath("tool")
	require.NoError(t, err)
	assert.Equal(t, "/fallback/tool", path)
}
