package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const promoteBatch = 100

// promoteScript moves due members of the delayed set onto the queue. Running
// it server side keeps two promoters from pushing the same job twice.
var promoteScript = redis.NewScript(`
local items = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, v in ipairs(items) do
  redis.call('ZREM', KEYS[1], v)
  redis.call('LPUSH', KEYS[2], v)
end
return #items
`)

// RedisQueue keeps each queue as a list consumed from the right. Producers
// LPUSH, consumers BLMOVE into {queue}:processing.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Enqueue(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, queue, encoded).Err()
}

func (q *RedisQueue) Reserve(ctx context.Context, queue string, timeout time.Duration) (*Delivery, error) {
	raw, err := q.rdb.BLMove(ctx, queue, processingKey(queue), "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	d := &Delivery{Queue: queue, Raw: raw}
	if err := json.Unmarshal([]byte(raw), &d.Job); err != nil {
		// Unreadable envelopes can never succeed, park them right away.
		if dlqErr := q.DeadLetter(ctx, d, "invalid job envelope: "+err.Error()); dlqErr != nil {
			return nil, dlqErr
		}
		return nil, nil
	}
	return d, nil
}

func (q *RedisQueue) Ack(ctx context.Context, d *Delivery) error {
	return q.rdb.LRem(ctx, processingKey(d.Queue), 1, d.Raw).Err()
}

func (q *RedisQueue) Retry(ctx context.Context, d *Delivery, delay time.Duration) error {
	job := d.Job
	job.Attempts++
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	due := time.Now().Add(delay).UnixMilli()
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, processingKey(d.Queue), 1, d.Raw)
		pipe.ZAdd(ctx, delayedKey(d.Queue), redis.Z{Score: float64(due), Member: encoded})
		return nil
	})
	return err
}

func (q *RedisQueue) DeadLetter(ctx context.Context, d *Delivery, reason string) error {
	entry := DLQEntry{
		OriginalQueue: d.Queue,
		JobName:       d.Job.Name,
		JobID:         d.Job.ID,
		Data:          d.Job.Data,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      d.Job.Attempts + 1,
	}
	if entry.Data == nil {
		entry.Data = json.RawMessage(strconv.Quote(d.Raw))
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, processingKey(d.Queue), 1, d.Raw)
		pipe.LPush(ctx, dlqKey(d.Queue), data)
		return nil
	})
	if err != nil {
		return err
	}

	log.Warn().
		Str("queue", d.Queue).
		Str("job_id", d.Job.ID).
		Str("reason", reason).
		Int("attempts", entry.Attempts).
		Msg("queue: job moved to dead letter queue")
	return nil
}

func (q *RedisQueue) PromoteDue(ctx context.Context, queue string, now time.Time) (int, error) {
	keys := []string{delayedKey(queue), queue}
	return promoteScript.Run(ctx, q.rdb, keys, now.UnixMilli(), promoteBatch).Int()
}

// RecoverInFlight must run before the consumers of queue start.
func (q *RedisQueue) RecoverInFlight(ctx context.Context, queue string) (int, error) {
	moved := 0
	for {
		_, err := q.rdb.LMove(ctx, processingKey(queue), queue, "LEFT", "RIGHT").Result()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func (q *RedisQueue) DLQLength(ctx context.Context, queue string) (int64, error) {
	return q.rdb.LLen(ctx, dlqKey(queue)).Result()
}

// PeekDLQ returns up to n of the most recent DLQ entries.
func (q *RedisQueue) PeekDLQ(ctx context.Context, queue string, n int64) ([]DLQEntry, error) {
	raws, err := q.rdb.LRange(ctx, dlqKey(queue), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]DLQEntry, 0, len(raws))
	for _, raw := range raws {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
