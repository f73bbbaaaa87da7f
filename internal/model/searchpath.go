package model

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/spf13/afero"
)

// SearchPath is an ordered list of directories models load helper scripts
// from. Entries added by With are removed when the call returns.
type SearchPath struct {
	mu   sync.Mutex
	dirs []string
}

// Scripts is the process-wide script search path.
var Scripts = &SearchPath{}

// With puts dir first on the path for the duration of fn. The entry is
// removed even if fn panics.
func (p *SearchPath) With(dir string, fn func() (any, error)) (any, error) {
	p.push(dir)
	defer p.remove(dir)
	return fn()
}

func (p *SearchPath) push(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirs = slices.Insert(p.dirs, 0, dir)
}

func (p *SearchPath) remove(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := slices.Index(p.dirs, dir); i >= 0 {
		p.dirs = slices.Delete(p.dirs, i, i+1)
	}
}

func (p *SearchPath) Dirs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.dirs)
}

// Lookup returns the path of the first file called name found on the path.
func (p *SearchPath) Lookup(fs afero.Fs, name string) (string, error) {
	for _, dir := range p.Dirs() {
		candidate := filepath.Join(dir, name)
		info, err := fs.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, os.ErrNotExist)
}
