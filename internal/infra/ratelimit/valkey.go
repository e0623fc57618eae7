package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"
)

// incrWindow creates the counter and its TTL in one step so no key outlives its window.
var incrWindow = valkey.NewLuaScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// ValkeyLimiter enforces a fixed window per key shared by every replica.
type ValkeyLimiter struct {
	client valkey.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewValkeyLimiter allows limit requests per window per key.
func NewValkeyLimiter(client valkey.Client, prefix string, limit int, window time.Duration) *ValkeyLimiter {
	if prefix == "" {
		prefix = "summarizer:ratelimit"
	}
	if window < time.Second {
		window = time.Minute
	}
	return &ValkeyLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow increments the counter of the current window for key.
func (l *ValkeyLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := l.windowKey(key, l.now())
	// twice the window so a skewed clock never revives a finished window
	ttl := strconv.FormatInt(int64((2*l.window)/time.Second), 10)
	count, err := incrWindow.Exec(ctx, l.client, []string{windowKey}, []string{ttl}).AsInt64()
	if err != nil {
		return false, fmt.Errorf("incr rate window: %w", err)
	}
	return count <= l.limit, nil
}

func (l *ValkeyLimiter) windowKey(key string, now time.Time) string {
	start := now.Truncate(l.window).Unix()
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, start)
}
