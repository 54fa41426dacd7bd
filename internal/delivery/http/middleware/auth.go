package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "guestregistration/internal/delivery/http/helpers"
	"guestregistration/internal/domain"
)

type staffKey struct{}

var (
	errNoAuthorization = errors.New("missing authorization header")
	errNotBearer       = errors.New("authorization scheme must be Bearer")
	errEmptyToken      = errors.New("empty bearer token")
)

// SetStaffID returns a context carrying the authenticated staff subject.
func SetStaffID(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, staffKey{}, staffID)
}

// StaffIDFromContext returns the staff subject set by RequireStaff.
func StaffIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(staffKey{}).(string)
	return id, ok && id != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errNoAuthorization
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errNotBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errEmptyToken
	}
	return token, nil
}

// RequireStaff guards cancel and check-in routes. Requests without a valid
// staff token get 401 with a WWW-Authenticate challenge and never reach next.
func RequireStaff(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			msg := ""
			if err != nil {
				msg = err.Error()
			} else {
				var staffID string
				if staffID, err = verifier.Verify(token); err == nil {
					next(w, r.WithContext(SetStaffID(r.Context(), staffID)))
					return
				}
				logger.WarnContext(r.Context(), "staff token rejected", "path", r.URL.Path, "err", err)
				msg = "invalid or expired token"
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="staff"`)
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msg)
		}
	}
}
