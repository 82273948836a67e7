package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	inHttp "github.com/widyatma/catalog/internal/http"
	"github.com/widyatma/catalog/internal/log"
)

// Config is a fixed-window limit: at most MaxRequests per Interval for one
// identifier.
type Config struct {
	Interval    time.Duration
	MaxRequests int
}

// Named limits per endpoint class. AuthFailure is constructible but not wired
// into any request path yet; it exists for throttling repeated login
// failures.
var (
	Write       = Config{Interval: time.Minute, MaxRequests: 10}
	Read        = Config{Interval: time.Minute, MaxRequests: 100}
	AuthFailure = Config{Interval: 15 * time.Minute, MaxRequests: 5}
)

// CleanupInterval is how often expired entries are swept from the store.
const CleanupInterval = 5 * time.Minute

type entry struct {
	count     int
	resetTime time.Time
}

// Result reports one Allow decision. When Limited, the caller owes the
// client a 429 carrying ResetTime as retry metadata.
type Result struct {
	Limited   bool
	Remaining int
	ResetTime time.Time
}

// Limiter is a fixed-window counter over an in-memory map. Entries reset
// lazily on the first access after the window elapses, so a burst straddling
// a window boundary can pass up to twice MaxRequests in a short span; that
// imprecision is the accepted trade-off of the fixed-window algorithm.
//
// Limiters are safe for concurrent use. Construct one per endpoint class so
// tests and classes never share process state.
type Limiter struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*entry

	now func() time.Time
}

func NewLimiter(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg,
		entries: map[string]*entry{},
		now:     time.Now,
	}
}

func (l *Limiter) Max() int { return l.cfg.MaxRequests }

// Allow counts one request for identifier and reports whether it exceeded
// the window's budget. The read-modify-write on the counter is guarded so two
// in-flight requests under the same identifier cannot both observe a stale
// count.
func (l *Limiter) Allow(identifier string) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok || now.After(e.resetTime) {
		e = &entry{count: 0, resetTime: now.Add(l.cfg.Interval)}
		l.entries[identifier] = e
	}
	e.count++

	remaining := l.cfg.MaxRequests - e.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Limited:   e.count > l.cfg.MaxRequests,
		Remaining: remaining,
		ResetTime: e.resetTime,
	}
}

// StartCleanup sweeps expired entries every CleanupInterval until c is done,
// bounding the store's memory. This is the only garbage collection the
// limiter has; state never survives a process restart.
func (l *Limiter) StartCleanup(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Limiter StartCleanup").
		Logger()

	go func() {
		ticker := time.NewTicker(CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-c.Done():
				logger.Info().Msg("stopping rate limit cleanup")
				return
			case <-ticker.C:
				removed := l.Cleanup()
				logger.Debug().Int("removed", removed).Msg("swept expired rate limit entries")
			}
		}
	}()
}

// Cleanup removes entries whose window has already expired and reports how
// many were removed.
func (l *Limiter) Cleanup() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if now.After(e.resetTime) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Identifier resolves who a request counts against: the API key when one is
// presented, else the first hop of the forwarded-for chain, else the peer
// address.
func Identifier(r *http.Request) string {
	if apiKey := r.Header.Get(inHttp.HeaderApiKey); apiKey != "" {
		return "key:" + apiKey
	}

	if forwarded := r.Header.Get(inHttp.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return "ip:" + strings.TrimSpace(first)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return "ip:" + host
	}
	if r.RemoteAddr != "" {
		return "ip:" + r.RemoteAddr
	}
	return "ip:unknown"
}
