// Package adapter rebuilds a database adapter from serialized configuration
// and moves relations between the database and Arrow tables.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/fal-labs/falrun/internal/frame"
	"github.com/fal-labs/falrun/internal/platform/logging"
)

// Adapter reads and writes whole relations.
type Adapter interface {
	Type() string
	ReadRelation(ctx context.Context, relation string) (arrow.Table, error)
	WriteRelation(ctx context.Context, relation string, data arrow.Table) (Response, error)
	Close() error
}

// Response summarizes a statement executed on behalf of a model.
type Response struct {
	Message      string
	Code         string
	RowsAffected int64
}

// SQLAdapter implements Adapter on a database/sql pool.
type SQLAdapter struct {
	kind     string
	db       *sql.DB
	dialect  Dialect
	schema   string
	manifest Manifest
	macros   MacroManifest
	debug    bool
	logger   *slog.Logger
}

func NewSQLAdapter(kind string, db *sql.DB, dialect Dialect, creds Credentials, manifest Manifest, macros MacroManifest, logger *slog.Logger) *SQLAdapter {
	return &SQLAdapter{
		kind:     kind,
		db:       db,
		dialect:  dialect,
		schema:   creds.Schema,
		manifest: manifest,
		macros:   macros,
		logger:   logging.OrDefault(logger),
	}
}

func (a *SQLAdapter) Type() string {
	return a.kind
}

// Relation resolves a model or relation name to the quoted name used in SQL.
func (a *SQLAdapter) Relation(name string) string {
	if rel, ok := a.manifest.RelationFor(name); ok {
		return rel
	}
	return QualifyRelation(a.schema, name)
}

func (a *SQLAdapter) ReadRelation(ctx context.Context, relation string) (arrow.Table, error) {
	query, err := a.macros.Render(MacroReadRelation, a.Relation(relation))
	if err != nil {
		return nil, err
	}
	a.trace(ctx, query)

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relation, err)
	}
	defer func() { _ = rows.Close() }()

	tbl, err := frame.FromSQLRows(rows)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relation, err)
	}
	return tbl, nil
}

// WriteRelation replaces relation with the contents of data in one
// transaction.
func (a *SQLAdapter) WriteRelation(ctx context.Context, relation string, data arrow.Table) (Response, error) {
	target := a.Relation(relation)
	drop, err := a.macros.Render(MacroDropRelation, target)
	if err != nil {
		return Response{}, err
	}
	create := a.dialect.createTable(target, data.Schema())
	insert := a.dialect.insert(target, data.Schema())

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return Response{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{drop, create} {
		a.trace(ctx, stmt)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return Response{}, fmt.Errorf("write %s: %w", relation, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return Response{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var inserted int64
	err = frame.EachRow(data, func(row []any) error {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return err
		}
		inserted++
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("insert into %s: %w", relation, err)
	}
	if err := tx.Commit(); err != nil {
		return Response{}, fmt.Errorf("commit: %w", err)
	}

	a.logger.InfoContext(ctx, "relation written", "adapter", a.kind, "relation", target, "rows", inserted)
	return Response{
		Message:      fmt.Sprintf("INSERT %d", inserted),
		Code:         "INSERT",
		RowsAffected: inserted,
	}, nil
}

func (a *SQLAdapter) Close() error {
	return a.db.Close()
}

func (a *SQLAdapter) trace(ctx context.Context, stmt string) {
	if a.debug {
		a.logger.DebugContext(ctx, "executing sql", "adapter", a.kind, "sql", stmt)
	}
}
