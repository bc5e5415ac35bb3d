package context

import (
	"context"
	"fmt"
	"sync"
)

type ctxKey struct{}

// RequestContext carries memoized reads and staged writes for one operation.
type RequestContext struct {
	ctx       context.Context
	cache     sync.Map
	actions   []Action
	mu        sync.Mutex
	committed bool
}

// New creates a RequestContext bound to ctx.
func New(ctx context.Context) *RequestContext {
	return &RequestContext{ctx: ctx}
}

// FromContext returns the RequestContext stored in ctx, or nil.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}

	if rc, ok := ctx.Value(ctxKey{}).(*RequestContext); ok {
		return rc
	}

	return nil
}

// WithContext stores rc in ctx.
func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// GetOrFetch returns the cached value for key or runs fetchFn and caches its result.
// Errors are not cached.
func (rc *RequestContext) GetOrFetch(key string, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	if cached, ok := rc.cache.Load(key); ok {
		return cached, nil
	}

	value, err := fetchFn(rc.ctx)
	if err != nil {
		return nil, err
	}

	actual, _ := rc.cache.LoadOrStore(key, value)

	return actual, nil
}

// Forget drops a cached value, e.g. after the record was written.
func (rc *RequestContext) Forget(key string) {
	rc.cache.Delete(key)
}

// Fetch is the typed form of GetOrFetch.
func Fetch[T any](rc *RequestContext, key string, fetchFn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if rc == nil {
		return zero, fmt.Errorf("fetch %s: no request context", key)
	}

	v, err := rc.GetOrFetch(key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("fetch %s: cached value has type %T", key, v)
	}

	return typed, nil
}

// Context returns the bound context.
func (rc *RequestContext) Context() context.Context {
	return rc.ctx
}
