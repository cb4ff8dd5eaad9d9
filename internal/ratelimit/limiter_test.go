package ratelimit

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quizlab-backend/internal/data/repos/testutil"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type failingStore struct{}

func (failingStore) Hit(context.Context, string, string, time.Duration, time.Time) (int, error) {
	return 0, errors.New("store down")
}

func exerciseFixedWindow(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	l := NewLimiter(logger.Nop(), store, WithClock(clk.now))

	for i := 0; i < 3; i++ {
		assert.True(t, l.CheckAndIncrement(ctx, "203.0.113.9", EndpointGradeAnswer, 3, time.Hour), "call %d", i+1)
		clk.advance(time.Minute)
	}
	assert.False(t, l.CheckAndIncrement(ctx, "203.0.113.9", EndpointGradeAnswer, 3, time.Hour))
	assert.True(t, l.CheckAndIncrement(ctx, "203.0.113.9", EndpointGenerateQuiz, 3, time.Hour), "endpoints count separately")
	assert.True(t, l.CheckAndIncrement(ctx, "198.51.100.1", EndpointGradeAnswer, 3, time.Hour), "keys count separately")

	// The window started at 10:00; at 11:00 it has fully elapsed.
	clk.t = time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	assert.True(t, l.CheckAndIncrement(ctx, "203.0.113.9", EndpointGradeAnswer, 3, time.Hour))
	assert.True(t, l.CheckAndIncrement(ctx, "203.0.113.9", EndpointGradeAnswer, 3, time.Hour))
	assert.True(t, l.CheckAndIncrement(ctx, "203.0.113.9", EndpointGradeAnswer, 3, time.Hour))
	assert.False(t, l.CheckAndIncrement(ctx, "203.0.113.9", EndpointGradeAnswer, 3, time.Hour))
}

func TestGormStoreFixedWindow(t *testing.T) {
	exerciseFixedWindow(t, NewGormStore(testutil.DB(t)))
}

func TestRedisStoreFixedWindow(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("set REDIS_TEST_ADDR to run redis limiter tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb)
	store.prefix = "ratelimit-test-" + uuid.NewString()
	ctx := context.Background()
	l := NewLimiter(logger.Nop(), store)

	assert.True(t, l.CheckAndIncrement(ctx, "k", EndpointGradeAnswer, 2, 200*time.Millisecond))
	assert.True(t, l.CheckAndIncrement(ctx, "k", EndpointGradeAnswer, 2, 200*time.Millisecond))
	assert.False(t, l.CheckAndIncrement(ctx, "k", EndpointGradeAnswer, 2, 200*time.Millisecond))
	time.Sleep(300 * time.Millisecond)
	assert.True(t, l.CheckAndIncrement(ctx, "k", EndpointGradeAnswer, 2, 200*time.Millisecond))
}

func TestUnknownKeyPolicy(t *testing.T) {
	ctx := context.Background()
	allow := NewLimiter(logger.Nop(), failingStore{})
	deny := NewLimiter(logger.Nop(), failingStore{}, WithUnknownPolicy("DENY"))

	assert.True(t, allow.CheckAndIncrement(ctx, UnknownKey, EndpointGradeAnswer, 1, time.Hour))
	assert.False(t, deny.CheckAndIncrement(ctx, UnknownKey, EndpointGradeAnswer, 1, time.Hour))
	assert.False(t, deny.CheckAndIncrement(ctx, "", EndpointGradeAnswer, 1, time.Hour))
}

func TestStoreFailureAllows(t *testing.T) {
	l := NewLimiter(logger.Nop(), failingStore{})
	assert.True(t, l.CheckAndIncrement(context.Background(), "k", EndpointGradeAnswer, 1, time.Hour))
}

func TestResolveKey(t *testing.T) {
	id := uuid.New()
	require.Equal(t, id.String(), ResolveKey(false, id, "203.0.113.9"))
	assert.Equal(t, "203.0.113.9", ResolveKey(true, id, " 203.0.113.9 , 10.0.0.1"))
	assert.Equal(t, UnknownKey, ResolveKey(true, id, ""))
	assert.Equal(t, UnknownKey, ResolveKey(false, uuid.Nil, ""))
}
