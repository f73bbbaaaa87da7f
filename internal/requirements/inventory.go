package requirements

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var ErrPackageNotFound = errors.New("package not found")

// Metadata answers questions about installed packages.
type Metadata interface {
	Version(pkg string) (string, error)
	Extras(pkg string) ([]string, error)
}

type InventoryPackage struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Extras  []string `yaml:"extras,omitempty"`
}

// Inventory lists installed packages and adapter identifiers. It is the
// Metadata source used by the CLI.
type Inventory struct {
	Packages []InventoryPackage `yaml:"packages"`
	Adapters []string           `yaml:"adapters"`
}

func LoadInventory(fs afero.Fs, path string) (Inventory, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return Inventory{}, fmt.Errorf("read inventory: %w", err)
	}
	var inv Inventory
	if err := yaml.Unmarshal(raw, &inv); err != nil {
		return Inventory{}, fmt.Errorf("parse inventory %s: %w", path, err)
	}
	for i, p := range inv.Packages {
		if strings.TrimSpace(p.Name) == "" {
			return Inventory{}, fmt.Errorf("inventory %s: packages[%d].name is required", path, i)
		}
	}
	return inv, nil
}

func (inv Inventory) lookup(pkg string) (InventoryPackage, error) {
	for _, p := range inv.Packages {
		if strings.EqualFold(p.Name, pkg) {
			return p, nil
		}
	}
	return InventoryPackage{}, fmt.Errorf("%w: %s", ErrPackageNotFound, pkg)
}

func (inv Inventory) Version(pkg string) (string, error) {
	p, err := inv.lookup(pkg)
	if err != nil {
		return "", err
	}
	return p.Version, nil
}

func (inv Inventory) Extras(pkg string) ([]string, error) {
	p, err := inv.lookup(pkg)
	if err != nil {
		return nil, err
	}
	return slices.Clone(p.Extras), nil
}

func (inv Inventory) InstalledAdapters() []string {
	return slices.Clone(inv.Adapters)
}
