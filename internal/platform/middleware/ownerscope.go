package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	id "tagdex/pkg/domain"
)

// Owner scope is supplied by the upstream caller (gateway or session layer);
// authentication and ownership enforcement happen before requests reach this
// service. The engine only needs a concrete owner id threaded explicitly
// through every operation.
const OwnerHeader = "X-Owner-ID"

type contextKeyOwnerID struct{}

// ContextKeyOwnerID is exported for tests that build contexts directly.
var ContextKeyOwnerID = contextKeyOwnerID{}

// GetOwnerID retrieves the owner scope from the context.
// Returns the zero value if not set.
func GetOwnerID(ctx context.Context) id.OwnerID {
	if owner, ok := ctx.Value(ContextKeyOwnerID).(id.OwnerID); ok {
		return owner
	}
	return id.OwnerID{}
}

// WithOwnerID injects an owner scope into the context.
// Useful for handler tests that don't run the middleware chain.
func WithOwnerID(ctx context.Context, owner id.OwnerID) context.Context {
	return context.WithValue(ctx, ContextKeyOwnerID, owner)
}

// RequireOwnerScope rejects requests without a valid owner id header and
// threads the parsed scope into the request context.
func RequireOwnerScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := id.ParseOwnerID(r.Header.Get(OwnerHeader))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "missing or invalid " + OwnerHeader + " header",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), owner)))
	})
}
