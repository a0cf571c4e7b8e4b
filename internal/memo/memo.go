// README: Explicit memoization keyed on value tuples; singleflight collapses concurrent misses.
package memo

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key joins the parts of a value tuple. Parts are trimmed, lowercased and
// escaped so distinct tuples never collide.
func Key(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		p = strings.ReplaceAll(p, `\`, `\\`)
		escaped[i] = strings.ReplaceAll(p, "|", `\|`)
	}
	return strings.Join(escaped, "|")
}

// Memo caches successful results of fn in a Store. Errors are never cached.
type Memo[V any] struct {
	store     Store
	namespace string
	ttl       time.Duration
	group     singleflight.Group
	timeout   time.Duration
	logger    *zap.Logger
}

// DefaultFlightTimeout bounds a shared computation once it no longer follows
// the context of the caller that started it.
const DefaultFlightTimeout = 30 * time.Second

func New[V any](store Store, namespace string, ttl time.Duration, logger *zap.Logger) *Memo[V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memo[V]{store: store, namespace: namespace, ttl: ttl, timeout: DefaultFlightTimeout, logger: logger}
}

// SetFlightTimeout changes the bound on a shared computation. Zero or less
// keeps the default.
func (m *Memo[V]) SetFlightTimeout(d time.Duration) {
	if d > 0 {
		m.timeout = d
	}
}

type flightResult[V any] struct {
	val V
	hit bool
}

// Do returns the cached value for key or runs fn. On a failed fn the partial
// value fn returned is passed back together with its error. A store failure
// degrades to calling fn.
//
// fn runs detached from ctx and bounded by the flight timeout, so one caller
// giving up does not fail the others waiting on the same key. A cancelled
// caller returns its own ctx error without waiting.
func (m *Memo[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, bool, error) {
	full := m.namespace + ":" + key
	ch := m.group.DoChan(full, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()

		if raw, ok, err := m.store.Get(ctx, full); err != nil {
			m.logger.Warn("memo get failed", zap.String("key", full), zap.Error(err))
		} else if ok {
			var v V
			if err := json.Unmarshal(raw, &v); err == nil {
				return flightResult[V]{val: v, hit: true}, nil
			}
			m.logger.Warn("memo entry undecodable", zap.String("key", full))
		}

		v, err := fn(ctx)
		if err != nil {
			return flightResult[V]{val: v}, err
		}
		if raw, err := json.Marshal(v); err == nil {
			if err := m.store.Set(ctx, full, raw, m.ttl); err != nil {
				m.logger.Warn("memo set failed", zap.String("key", full), zap.Error(err))
			}
		}
		return flightResult[V]{val: v}, nil
	})

	select {
	case res := <-ch:
		fr := res.Val.(flightResult[V])
		if res.Err != nil {
			return fr.val, false, res.Err
		}
		return fr.val, fr.hit, nil
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	}
}

// Local memoizes a pure function in process, without expiry. Once max keys
// are held, new results are computed but not stored.
type Local[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	max   int
}

func NewLocal[K comparable, V any](max int) *Local[K, V] {
	return &Local[K, V]{items: make(map[K]V), max: max}
}

func (l *Local[K, V]) Get(key K, fn func() V) V {
	l.mu.RLock()
	v, ok := l.items[key]
	l.mu.RUnlock()
	if ok {
		return v
	}
	v = fn()
	l.mu.Lock()
	if l.max <= 0 || len(l.items) < l.max {
		l.items[key] = v
	}
	l.mu.Unlock()
	return v
}

func (l *Local[K, V]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
