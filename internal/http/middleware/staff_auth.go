package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/brightsmile-dental/clinic-api/internal/staff"
)

type contextKey string

const staffSessionKey contextKey = "staffSession"

// StaffAuth enforces the staff gate: a bearer token minted by Login whose
// device registry entry has not been revoked.
func StaffAuth(gate *staff.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			session, err := gate.Verify(r.Context(), strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				http.Error(w, "invalid session", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), staffSessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffSessionFromContext returns the authenticated staff session if present.
func StaffSessionFromContext(ctx context.Context) (*staff.Session, bool) {
	session, ok := ctx.Value(staffSessionKey).(*staff.Session)
	return session, ok
}
