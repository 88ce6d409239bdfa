package tenancy

import "context"

type ctxKey string

const spaKey ctxKey = "spawidget.spa_id"

// WithSpaID stores the spa id in context.
func WithSpaID(ctx context.Context, spaID string) context.Context {
	return context.WithValue(ctx, spaKey, spaID)
}

// SpaIDFromContext extracts the spa id if present.
func SpaIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(spaKey)
	if val == nil {
		return "", false
	}
	spaID, ok := val.(string)
	return spaID, ok && spaID != ""
}
