package ratelimit

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// The first hit in a window sets the expiry; later hits only count.
var hitScript = goredis.NewScript(`
local c = redis.call('INCR', KEYS[1])
if c == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return c`)

type RedisStore struct {
	rdb    goredis.Scripter
	prefix string
}

func NewRedisStore(rdb goredis.Scripter) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "ratelimit"}
}

func (s *RedisStore) Hit(ctx context.Context, key, endpoint string, window time.Duration, _ time.Time) (int, error) {
	redisKey := fmt.Sprintf("%s:%s:%s", s.prefix, endpoint, key)
	n, err := hitScript.Run(ctx, s.rdb, []string{redisKey}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return int(n), nil
}
