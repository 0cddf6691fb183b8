package core

import (
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = exec.ErrNotFound

// PathResolver resolves program names to executable paths by searching the
// PATH environment variable over a filesystem. The filesystem is abstracted
// so resolution is testable without touching the host.
type PathResolver struct {
	Fs     afero.Fs
	Getenv func(string) string

	// Fallback is the configured search path used when $PATH is unset.
	Fallback []string
}

func (r *PathResolver) findExecutable(file string) error {
	d, err := r.Fs.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

func (r *PathResolver) searchPath() []string {
	if path := r.Getenv("PATH"); path != "" {
		return filepath.SplitList(path)
	}
	return r.Fallback
}

// LookPath searches for an executable named file in the directories of the
// PATH environment variable. If file contains a slash, it is tried directly
// and the PATH is not consulted.
func (r *PathResolver) LookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := r.findExecutable(file); err == nil {
			return file, nil
		}
		return "", ErrNotFound
	}
	for _, dir := range r.searchPath() {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := r.findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}
