package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// Security configures the net/http layer placed in front of the gin engine.
type Security struct {
	RateLimitRequests int // 0 disables rate limiting
	RateLimitWindow   time.Duration
	CORSOrigins       []string // empty disables CORS headers
}

// Wrap applies CORS and per-IP rate limiting around h.
func Wrap(h http.Handler, s Security) http.Handler {
	if s.RateLimitRequests > 0 {
		window := s.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		h = httprate.Limit(
			s.RateLimitRequests,
			window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(tooManyRequests),
		)(h)
	}

	if len(s.CORSOrigins) > 0 {
		h = cors.Handler(cors.Options{
			AllowedOrigins: s.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         86400,
		})(h)
	}
	return h
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"message":"too many requests"}`))
}
