package requirements

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/fal-labs/falrun/internal/platform/logging"
)

type Options struct {
	// FS and SourceDir locate a development checkout of the host package.
	FS        afero.Fs
	SourceDir string
	Logger    *slog.Logger
}

type cacheKey struct {
	adapterType string
	teleport    bool
	remote      bool
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s|%t|%t", k.adapterType, k.teleport, k.remote)
}

// Describer computes default requirements and caches them per argument set
// for its lifetime. Entries are never invalidated, so package changes made
// after the first call are not observed.
type Describer struct {
	meta      Metadata
	installed []string
	opts      Options
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[cacheKey][]Requirement
	group singleflight.Group
}

func NewDescriber(meta Metadata, installedAdapters []string, opts Options) *Describer {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	return &Describer{
		meta:      meta,
		installed: slices.Clone(installedAdapters),
		opts:      opts,
		logger:    logging.OrDefault(opts.Logger),
		cache:     map[cacheKey][]Requirement{},
	}
}

// DefaultRequirements returns the adapter package pin followed, when the
// host package is installed, by the host package with its extras. Repeated
// calls with the same arguments return the same slice.
func (d *Describer) DefaultRequirements(adapterType string, isTeleport, isRemote bool) ([]Requirement, error) {
	key := cacheKey{adapterType: adapterType, teleport: isTeleport, remote: isRemote}
	if reqs, ok := d.cached(key); ok {
		return reqs, nil
	}
	v, err, _ := d.group.Do(key.String(), func() (any, error) {
		if reqs, ok := d.cached(key); ok {
			return reqs, nil
		}
		reqs, err := d.compute(adapterType, isTeleport)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		d.cache[key] = reqs
		d.mu.Unlock()
		return reqs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Requirement), nil
}

// PipDependencies formats DefaultRequirements as pip requirement strings.
func (d *Describer) PipDependencies(adapterType string, isTeleport, isRemote bool) ([]string, error) {
	reqs, err := d.DefaultRequirements(adapterType, isTeleport, isRemote)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.String()
	}
	return out, nil
}

func (d *Describer) cached(key cacheKey) ([]Requirement, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reqs, ok := d.cache[key]
	return reqs, ok
}

func (d *Describer) compute(adapterType string, isTeleport bool) ([]Requirement, error) {
	adapterPkg := AdapterPackage(adapterType)
	adapterVersion, err := d.meta.Version(adapterPkg)
	if err != nil {
		return nil, fmt.Errorf("adapter %s: %w", adapterType, err)
	}
	reqs := []Requirement{{Package: adapterPkg, Version: adapterVersion}}

	hostVersion, err := d.meta.Version(HostPackage)
	if err != nil {
		d.logger.Debug("host package not installed", "package", HostPackage, "error", err)
		return reqs, nil
	}

	extras, err := d.extras(adapterPkg)
	if err != nil {
		return nil, err
	}
	if isTeleport && !slices.Contains(extras, TeleportExtra) {
		extras = append(extras, TeleportExtra)
		sort.Strings(extras)
	}

	hostPkg := HostPackage
	if IsPrerelease(hostVersion) {
		if dir, ok := SourceRoot(d.opts.FS, d.opts.SourceDir); ok {
			hostPkg = dir
			hostVersion = ""
		}
	}
	if len(extras) > 0 {
		hostPkg += "[" + strings.Join(extras, ",") + "]"
	}
	return append(reqs, Requirement{Package: hostPkg, Version: hostVersion}), nil
}

// extras returns the host package extras naming an installed adapter that is
// part of adapterPkg's name.
func (d *Describer) extras(adapterPkg string) ([]string, error) {
	declared, err := d.meta.Extras(HostPackage)
	if err != nil {
		return nil, fmt.Errorf("extras of %s: %w", HostPackage, err)
	}
	var out []string
	for _, extra := range declared {
		if slices.Contains(d.installed, extra) && strings.Contains(adapterPkg, extra) && !slices.Contains(out, extra) {
			out = append(out, extra)
		}
	}
	sort.Strings(out)
	return out, nil
}
