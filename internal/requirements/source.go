package requirements

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// SourceDir is the directory inside a checkout holding the adapter package.
const SourceDir = "adapter"

// SourceRoot walks up from start to the first directory containing .git
// and returns that checkout's adapter directory.
func SourceRoot(fs afero.Fs, start string) (string, bool) {
	if start == "" {
		return "", false
	}
	dir := filepath.Clean(start)
	for {
		if ok, _ := afero.Exists(fs, filepath.Join(dir, ".git")); ok {
			return filepath.Join(dir, SourceDir), true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
