// Package sequence hands out sale numbers from a shared Redis counter so that
// several service instances never issue the same number.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"retail_sales/internal/sales"
)

const (
	keyPrefix = "sales:seq:"
	// Counters outlive their day so late writers near midnight still see them.
	keyTTL = 48 * time.Hour
)

// raiseScript sets KEYS[1] to ARGV[1] with a TTL of ARGV[2] seconds unless the
// counter is already at or above it. It returns the resulting counter.
var raiseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local target = tonumber(ARGV[1])
if current >= target then
	return current
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
return target
`)

// RedisGenerator implements sales.NumberGenerator with one INCR counter per UTC day.
type RedisGenerator struct {
	client redis.Cmdable
	clock  func() time.Time
}

func NewRedisGenerator(client redis.Cmdable) *RedisGenerator {
	return &RedisGenerator{client: client, clock: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (g *RedisGenerator) WithClock(clock func() time.Time) *RedisGenerator {
	g.clock = clock
	return g
}

func dayKey(day time.Time) string {
	return keyPrefix + day.UTC().Format("20060102")
}

func (g *RedisGenerator) Generate(ctx context.Context) (string, error) {
	today := g.clock().UTC()
	key := dayKey(today)

	var incr *redis.IntCmd
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, keyTTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to increment sale sequence %s: %w", key, err)
	}
	if incr.Val() > sales.MaxSaleSequence {
		return "", fmt.Errorf("%w: counter %s reached %d", sales.ErrSequenceExhausted, key, incr.Val())
	}
	return sales.FormatSaleNumber(today, incr.Val()), nil
}

// Seed raises today's counter to at least last, so numbering continues after
// sales that were created before the counter existed.
func (g *RedisGenerator) Seed(ctx context.Context, source sales.NumberSource) error {
	today := g.clock().UTC()
	prefix := today.Format("20060102")

	last, err := source.LastSaleNumber(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to read last sale number: %w", err)
	}
	if len(last) <= len(prefix) {
		return nil
	}
	seq, err := strconv.ParseInt(last[len(prefix):], 10, 64)
	if err != nil {
		return nil
	}

	key := dayKey(today)
	if err := raiseScript.Run(ctx, g.client, []string{key}, seq, int64(keyTTL/time.Second)).Err(); err != nil {
		return fmt.Errorf("failed to seed sale sequence %s: %w", key, err)
	}
	return nil
}
