package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/fal-labs/falrun/internal/platform/logging"
	"github.com/fal-labs/falrun/internal/platform/postgres"
	"github.com/fal-labs/falrun/internal/platform/sqlite"
)

// Factory opens a connection pool for one adapter type.
type Factory struct {
	Dialect Dialect
	Open    func(ctx context.Context, creds Credentials, flags Flags) (*sql.DB, error)
}

// Reconstructor rebuilds adapters from serialized configuration. It can run in
// a different process from the one that produced the configuration.
type Reconstructor struct {
	factories map[string]Factory
	logger    *slog.Logger
}

func NewReconstructor(logger *slog.Logger) *Reconstructor {
	r := &Reconstructor{
		factories: map[string]Factory{},
		logger:    logging.OrDefault(logger),
	}
	r.Register("postgres", Factory{Dialect: PostgresDialect, Open: openPostgres})
	r.Register("sqlite", Factory{Dialect: SQLiteDialect, Open: openSQLite})
	return r
}

func (r *Reconstructor) Register(adapterType string, f Factory) {
	r.factories[strings.ToLower(adapterType)] = f
}

func (r *Reconstructor) Types() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Reconstruct builds a ready adapter for the database side of cfg.
func (r *Reconstructor) Reconstruct(ctx context.Context, flags Flags, cfg RuntimeConfig, manifest Manifest, macros MacroManifest) (*SQLAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	creds := cfg.DBAdapterConfig().Credentials
	kind := strings.ToLower(strings.TrimSpace(creds.Type))
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnsupportedAdapter, creds.Type, strings.Join(r.Types(), ", "))
	}

	db, err := factory.Open(ctx, creds, flags)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", kind, err)
	}

	r.logger.DebugContext(ctx, "adapter reconstructed",
		"adapter", kind,
		"encapsulation", string(cfg.encapsulation()),
		"target", flags.Target,
		"nodes", len(manifest.Nodes),
		"macros", len(macros.Macros),
	)
	a := NewSQLAdapter(kind, db, factory.Dialect, creds, manifest, macros, r.logger)
	a.debug = flags.Debug
	return a, nil
}

// FromBundle reconstructs an adapter from Bundle.Marshal output.
func (r *Reconstructor) FromBundle(ctx context.Context, data []byte) (*SQLAdapter, error) {
	b, err := UnmarshalBundle(data)
	if err != nil {
		return nil, err
	}
	return r.Reconstruct(ctx, b.Flags, b.Config, b.Manifest, b.MacroManifest)
}

func openPostgres(ctx context.Context, creds Credentials, flags Flags) (*sql.DB, error) {
	dsn := creds.DSN
	if dsn == "" {
		var err error
		dsn, err = postgres.Endpoint{
			Host:     creds.Host,
			Port:     creds.Port,
			User:     creds.User,
			Password: creds.Password,
			Database: creds.Database,
			SSLMode:  creds.SSLMode,
		}.URL()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := postgres.ConfigFromEnv(dsn)
	if err != nil {
		return nil, err
	}
	if flags.Threads > cfg.MaxOpenConns {
		cfg.MaxOpenConns = flags.Threads
	}
	return postgres.Open(ctx, cfg)
}

func openSQLite(ctx context.Context, creds Credentials, _ Flags) (*sql.DB, error) {
	path := creds.Path
	if path == "" {
		path = creds.Database
	}
	return sqlite.Open(ctx, sqlite.Config{Path: path})
}
