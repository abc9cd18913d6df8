package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// RateLimited wraps a Completer with a proactive, Redis-backed
// requests-per-minute throttle, so a burst of knowledge source
// triggers (e.g. under the anti-loop cap) cannot exhaust an external
// quota before the cap itself kicks in. Grounded on the donor's
// internal/llm/rate_limiter.go Lua-script counter, trimmed to a
// single RPM threshold — this engine has no TPM/RPD concept to track
// since it has no notion of token-metered billing per call.
type RateLimited struct {
	inner    Completer
	redis    *redis.Client
	rpmLimit int64
	logger   *logging.Logger
}

// NewRateLimited connects to redisAddr and wraps inner with an RPM
// limiter. rpmLimit <= 0 defaults to 1000, the donor's Tier 1 default.
func NewRateLimited(inner Completer, redisAddr string, rpmLimit int64) (*RateLimited, error) {
	if rpmLimit <= 0 {
		rpmLimit = 1000
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
	}

	return &RateLimited{
		inner:    inner,
		redis:    client,
		rpmLimit: rpmLimit,
		logger:   logging.With("component", "llm.ratelimiter"),
	}, nil
}

var incrAndCheckScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then redis.call('EXPIRE', KEYS[1], 70) end
	if count > tonumber(ARGV[1]) then
		return {-1, count}
	end
	return {0, count}
`)

func (r *RateLimited) Complete(ctx context.Context, prompt, purpose string) (string, error) {
	minuteKey := fmt.Sprintf("llm:rpm:%s", time.Now().Format("2006-01-02T15:04"))

	result, err := incrAndCheckScript.Run(ctx, r.redis, []string{minuteKey}, r.rpmLimit).Result()
	if err != nil {
		r.logger.Warn("rate limiter unavailable, proceeding without throttle", "error", err)
		return r.inner.Complete(ctx, prompt, purpose)
	}

	values, ok := result.([]interface{})
	if ok && len(values) == 2 {
		if code, ok := values[0].(int64); ok && code < 0 {
			return "", fmt.Errorf("llm rate limit exceeded (%d/min)", r.rpmLimit)
		}
	}

	return r.inner.Complete(ctx, prompt, purpose)
}

func (r *RateLimited) Close() error {
	return r.redis.Close()
}
