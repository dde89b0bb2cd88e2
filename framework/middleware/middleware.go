// Package middleware ships the framework's built-in global middleware. Each
// constructor returns a plain func(http.Handler) http.Handler so anything from
// the wider Go middleware ecosystem composes next to it.
//
// Nest: the counterparts of LoggerMiddleware, the global prefix guard rails
// and @UseGuards(ThrottlerGuard), wired through app.Use instead of decorators.
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"log/slog"

	"golang.org/x/time/rate"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// ── Request logging ──────────────────────────────────────────────────────────

// statusRecorder wraps http.ResponseWriter to capture status and body size.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

// Unwrap supports http.ResponseController.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// Logger emits one structured log line per request on the given logger.
//
//	app.Use(middleware.Logger(slog.Default()))
func Logger(log *slog.Logger) gohttp.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("latency", time.Since(start)),
				slog.Int("size", rec.size),
				slog.String("remote", r.RemoteAddr),
			}
			if id := RequestIDFrom(r); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}

			log.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
		})
	}
}

// ── Panic recovery ───────────────────────────────────────────────────────────

// Recovery converts a panic anywhere below it into a plain 500 response. The
// dispatcher already recovers handler panics; this is the outer net that also
// covers middleware registered by the application.
func Recovery(log *slog.Logger) gohttp.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ── Request id header ────────────────────────────────────────────────────────

type requestIDKey struct{}

// RequestIDHeader is the header read from and written to by RequestID.
const RequestIDHeader = "X-Request-ID"

// RequestID accepts a caller-supplied request id from the header or mints a
// fresh one, stores it on the request context and echoes it on the response.
// This id is the correlation id clients see; the dispatcher's internal scope
// id is separate and never leaves the process.
func RequestID() gohttp.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = randomID()
			}

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFrom extracts the correlation id stored by RequestID, or "".
func RequestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func randomID() string {
	b := make([]byte, 16)
	rand.Read(b) // never fails per crypto/rand contract
	return hex.EncodeToString(b)
}

// ── Rate limiting ────────────────────────────────────────────────────────────

// ThrottleConfig tunes the Throttle middleware.
type ThrottleConfig struct {
	Rate    float64                      // requests per second per client
	Burst   int                          // max burst per client
	KeyFunc func(r *http.Request) string // defaults to the remote IP
	MaxIdle time.Duration                // prune clients idle longer than this (default 5m)
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle applies a per-client token bucket. Clients over the limit receive
// 429 with a Retry-After hint.
//
//	app.Use(middleware.Throttle(middleware.ThrottleConfig{Rate: 10, Burst: 20}))
func Throttle(cfg ThrottleConfig) gohttp.Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(r *http.Request) string {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				return r.RemoteAddr
			}
			return host
		}
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 5 * time.Minute
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*throttleEntry)
		swept   time.Time
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.KeyFunc(r)

			mu.Lock()
			now := time.Now()
			if now.Sub(swept) >= time.Minute {
				for k, e := range clients {
					if now.Sub(e.lastSeen) > maxIdle {
						delete(clients, k)
					}
				}
				swept = now
			}
			entry, ok := clients[key]
			if !ok {
				entry = &throttleEntry{limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)}
				clients[key] = entry
			}
			entry.lastSeen = now
			mu.Unlock()

			if !entry.limiter.Allow() {
				w.Header().Set("Retry-After", strconv.FormatFloat(1/cfg.Rate, 'f', 0, 64))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ── Body size limit ──────────────────────────────────────────────────────────

// BodyLimit caps request bodies at max bytes. Reads past the cap fail, which
// the JSON binder surfaces as a 400.
func BodyLimit(max int64) gohttp.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if max > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, max)
			}
			next.ServeHTTP(w, r)
		})
	}
}
