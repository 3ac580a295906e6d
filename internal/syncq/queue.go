package syncq

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingKey = "cachesync:pending"
	delayedKey = "cachesync:delayed"

	claimTimeout = 2 * time.Second
)

// Queue is the broker contract the worker runs against. Claim blocks up
// to a short timeout and returns (nil, nil) when no job is ready, so the
// worker loop can observe context cancellation.
type Queue interface {
	Push(ctx context.Context, job *Job) error
	Claim(ctx context.Context) (*Job, error)
	Retry(ctx context.Context, job *Job, delay time.Duration) error
	PromoteDue(ctx context.Context) (int, error)
}

// RedisQueue is the durable queue implementation: a pending list for
// ready jobs and a sorted set of delayed retries scored by ready time.
// Durability lives in Redis, so workers may run in other processes.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue connects to Redis and verifies the connection.
func NewRedisQueue(ctx context.Context, redisURL string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisQueue{client: client}, nil
}

// Close closes the Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Push enqueues a job onto the pending list.
func (q *RedisQueue) Push(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, pendingKey, data).Err()
}

// Claim pops the next ready job, blocking up to claimTimeout.
// Returns (nil, nil) when nothing is ready.
func (q *RedisQueue) Claim(ctx context.Context) (*Job, error) {
	res, err := q.client.BRPop(ctx, claimTimeout, pendingKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BRPop returns [key, value]
	if len(res) != 2 {
		return nil, nil
	}

	job := &Job{}
	if err := json.Unmarshal([]byte(res[1]), job); err != nil {
		// A job that cannot be decoded can never succeed; drop it.
		return nil, nil
	}
	return job, nil
}

// Retry schedules a failed job to re-enter the pending list after delay.
func (q *RedisQueue) Retry(ctx context.Context, job *Job, delay time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.ZAdd(ctx, delayedKey, redis.Z{
		Score:  float64(time.Now().Add(delay).UnixMilli()),
		Member: string(data),
	}).Err()
}

// PromoteDue moves delayed jobs whose ready time has passed back onto
// the pending list. Returns the number of jobs promoted.
func (q *RedisQueue) PromoteDue(ctx context.Context) (int, error) {
	now := time.Now().UnixMilli()
	due, err := q.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now, 10),
		Count: 100,
	}).Result()
	if err != nil {
		return 0, err
	}

	for _, member := range due {
		pipe := q.client.TxPipeline()
		pipe.ZRem(ctx, delayedKey, member)
		pipe.LPush(ctx, pendingKey, member)
		if _, err := pipe.Exec(ctx); err != nil {
			return 0, err
		}
	}
	return len(due), nil
}
