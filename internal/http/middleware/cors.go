package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CORSOptions configures cross-origin access for the browser site.
type CORSOptions struct {
	// AllowedOrigins may contain "*" to echo back any Origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// ExposedHeaders are readable by browser scripts; the echoed request id by default.
	ExposedHeaders []string
	MaxAge         time.Duration
}

// Enabled reports whether any origin is allowed.
func (o CORSOptions) Enabled() bool {
	return len(o.AllowedOrigins) > 0
}

// CORS answers preflights and decorates responses for allowed origins.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	allowAny := false
	allow := map[string]struct{}{}
	for _, origin := range opts.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
		case "*":
			allowAny = true
		default:
			allow[origin] = struct{}{}
		}
	}

	methods := normalizeTokens(opts.AllowedMethods, strings.ToUpper, http.MethodGet, http.MethodPost, http.MethodOptions)
	headers := normalizeTokens(opts.AllowedHeaders, http.CanonicalHeaderKey, "Content-Type", RequestIDHeader)
	exposed := normalizeTokens(opts.ExposedHeaders, http.CanonicalHeaderKey, RequestIDHeader)
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}

	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(headers, ", ")
	exposeHeaders := strings.Join(exposed, ", ")
	maxAgeSeconds := strconv.Itoa(int(maxAge / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")
			_, listed := allow[strings.TrimRight(origin, "/")]
			allowed := allowAny || listed

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Expose-Headers", exposeHeaders)
				}
				next.ServeHTTP(w, r)
				return
			}

			// Preflight never reaches the handlers. A method outside the list
			// gets no allow headers, so the browser blocks the real request.
			requested := strings.ToUpper(strings.TrimSpace(r.Header.Get("Access-Control-Request-Method")))
			if allowed && slices.Contains(methods, requested) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				w.Header().Set("Access-Control-Max-Age", maxAgeSeconds)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func normalizeTokens(values []string, canon func(string) string, defaults ...string) []string {
	if len(values) == 0 {
		values = defaults
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		v = canon(v)
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
