package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods   = "GET, POST, OPTIONS"
	corsAllowHeaders   = "Authorization, Content-Type, Accept"
	corsExposeHeaders  = "Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining"
	corsPreflightCache = "600"
	anyOrigin          = "*"
)

// originPolicy is the parsed CORS_ALLOWED_ORIGINS list.
type originPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newOriginPolicy(list []string) originPolicy {
	p := originPolicy{origins: make(map[string]struct{}, len(list))}
	for _, o := range list {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case anyOrigin:
			p.any = true
		default:
			p.origins[strings.ToLower(o)] = struct{}{}
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.any {
		return true
	}
	_, ok := p.origins[strings.ToLower(origin)]
	return ok
}

// CORS lets the guest registration page call the API from the listed origins.
// Staff calls carry a bearer token, never cookies, so credentials are not
// allowed. "*" in the list admits every origin. Preflights end here with 204.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		hdr := w.Header()
		hdr.Add("Vary", "Origin")

		allowed := policy.allows(origin)
		if allowed {
			hdr.Set("Access-Control-Allow-Origin", origin)
		}

		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
		if !preflight {
			if allowed {
				hdr.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			}
			next.ServeHTTP(w, r)
			return
		}

		if allowed {
			hdr.Set("Access-Control-Allow-Methods", corsAllowMethods)
			hdr.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			hdr.Set("Access-Control-Max-Age", corsPreflightCache)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
