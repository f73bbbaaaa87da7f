package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const DriverName = "sqlite3"

type Config struct {
	Path        string
	BusyTimeout time.Duration
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return errors.New("sqlite path is required")
	}
	if c.BusyTimeout < 0 {
		return errors.New("sqlite busy timeout must be >= 0")
	}
	return nil
}

// uriPath escapes the characters that end the path part of a sqlite file URI.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func (c Config) dsn() string {
	timeout := c.BusyTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	params := url.Values{}
	params.Set("_busy_timeout", strconv.FormatInt(timeout.Milliseconds(), 10))
	params.Set("_foreign_keys", "on")
	return "file:" + uriPath.Replace(c.Path) + "?" + params.Encode()
}

// Open returns a single-connection pool; sqlite serializes writers anyway and
// a single connection keeps temporary objects visible across statements.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open(DriverName, cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
