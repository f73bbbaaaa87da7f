package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var ErrDuplicateModel = errors.New("model already registered")

// Catalog maps model names to compiled code.
type Catalog struct {
	mu    sync.RWMutex
	codes map[string]Code
}

func NewCatalog() *Catalog {
	return &Catalog{codes: map[string]Code{}}
}

func (c *Catalog) Register(code Code) error {
	name := strings.TrimSpace(code.Name)
	if name == "" {
		return errors.New("model name is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.codes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, name)
	}
	c.codes[name] = code
	return nil
}

func (c *Catalog) Lookup(name string) (Code, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	code, ok := c.codes[name]
	return code, ok
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.codes))
	for name := range c.codes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
