package ratelimit

import "context"

// Limiter decides whether a caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited admits every request.
type Unlimited struct{}

// Allow always returns true.
func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }
