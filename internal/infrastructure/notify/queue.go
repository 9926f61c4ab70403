// Package notify moves notification events from producers to a gateway
// through a queue, outside of any business transaction.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"homeloan-backend/internal/domain/notification"
)

var ErrQueueFull = errors.New("notification queue full")

// RedisQueue is a FIFO on a redis list: LPUSH on one end, BRPOP on the other.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

var _ notification.Queue = (*RedisQueue)(nil)

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Push(ctx context.Context, ev notification.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return q.rdb.LPush(ctx, q.key, b).Err()
}

func (q *RedisQueue) Pop(ctx context.Context, wait time.Duration) (notification.Event, error) {
	res, err := q.rdb.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return notification.Event{}, notification.ErrQueueEmpty
	}
	if err != nil {
		return notification.Event{}, err
	}
	// res is [key, value]
	var ev notification.Event
	if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
		return notification.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

// Len is the number of queued events.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

// MemoryQueue is a bounded in-process queue for single-instance runs and tests.
type MemoryQueue struct {
	ch chan notification.Event
}

var _ notification.Queue = (*MemoryQueue)(nil)

func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{ch: make(chan notification.Event, size)}
}

// Push never blocks; a full queue drops the event with ErrQueueFull.
func (q *MemoryQueue) Push(_ context.Context, ev notification.Event) error {
	select {
	case q.ch <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context, wait time.Duration) (notification.Event, error) {
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case ev := <-q.ch:
		return ev, nil
	case <-t.C:
		return notification.Event{}, notification.ErrQueueEmpty
	case <-ctx.Done():
		return notification.Event{}, ctx.Err()
	}
}
