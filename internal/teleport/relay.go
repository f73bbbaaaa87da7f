package teleport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/dustin/go-humanize"

	"github.com/fal-labs/falrun/internal/frame"
	"github.com/fal-labs/falrun/internal/platform/logging"
)

// Relay implements model reads and writes on top of object storage.
type Relay struct {
	info      Info
	locations DataLocation
	storage   Storage
	logger    *slog.Logger
}

func NewRelay(info Info, locations DataLocation, storage Storage, logger *slog.Logger) *Relay {
	if locations == nil {
		locations = DataLocation{}
	}
	return &Relay{
		info:      info,
		locations: locations,
		storage:   storage,
		logger:    logging.OrDefault(logger),
	}
}

// Locations returns the registry the relay reads from and records writes in.
func (r *Relay) Locations() DataLocation {
	return r.locations
}

// Read loads a relation previously registered in the location registry.
func (r *Relay) Read(ctx context.Context, relation string) (arrow.Table, error) {
	relation = strings.ToLower(relation)
	relationPath, ok := r.locations[relation]
	if !ok {
		return nil, fmt.Errorf("%w: could not find url for '%s' in %s", ErrLocationNotFound, relation, r.locations)
	}
	if r.info.Format != FormatParquet {
		return nil, fmt.Errorf("%w: Format %s not supported", ErrUnsupportedFormat, r.info.Format)
	}

	url, err := r.info.BuildURL(relationPath)
	if err != nil {
		return nil, err
	}
	opts, err := StorageOptions(r.info)
	if err != nil {
		return nil, err
	}
	data, err := r.storage.Read(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "teleport read", "relation", relation, "url", url, "size", humanize.Bytes(uint64(len(data))))
	return frame.DecodeParquet(ctx, data)
}

// Write persists data for relation and records its path. The registry is
// only updated once the object has been stored.
func (r *Relay) Write(ctx context.Context, relation string, data arrow.Table) (string, error) {
	relation = strings.ToLower(relation)
	if r.info.Format != FormatParquet {
		return "", fmt.Errorf("%w: Format %s not supported", ErrUnsupportedFormat, r.info.Format)
	}

	relationPath, err := r.info.BuildRelationPath(relation)
	if err != nil {
		return "", err
	}
	url, err := r.info.BuildURL(relationPath)
	if err != nil {
		return "", err
	}
	opts, err := StorageOptions(r.info)
	if err != nil {
		return "", err
	}
	encoded, err := frame.EncodeParquet(data)
	if err != nil {
		return "", err
	}
	if err := r.storage.Write(ctx, url, encoded, opts); err != nil {
		return "", err
	}

	r.locations[relation] = relationPath
	r.logger.DebugContext(ctx, "teleport write", "relation", relation, "url", url, "size", humanize.Bytes(uint64(len(encoded))))
	return relationPath, nil
}
