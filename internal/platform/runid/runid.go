package runid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the run id attached by WithRunID, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
