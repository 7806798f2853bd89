// Package queue is the Redis list transport shared by the replication
// publisher and the worker pools. Delivery is at least once: a reserved job
// sits in a processing list until it is acked, retried or dead-lettered.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const DLQPrefix = "dlq:"

// Job is the envelope for every queued message.
type Job struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Data       json.RawMessage `json:"data"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewJob wraps data in a fresh envelope.
func NewJob(name string, data []byte) Job {
	return Job{
		ID:         uuid.NewString(),
		Name:       name,
		Data:       data,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Delivery is a reserved job. Raw is the exact list member so the job can
// be removed from the processing list.
type Delivery struct {
	Queue string
	Job   Job
	Raw   string
}

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobName       string          `json:"job_name"`
	JobID         string          `json:"job_id"`
	Data          json.RawMessage `json:"data"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// Queue is implemented by Redis; tests supply in-memory fakes.
type Queue interface {
	Enqueue(ctx context.Context, queue string, job Job) error
	// Reserve blocks up to timeout; it returns nil, nil when nothing arrived.
	Reserve(ctx context.Context, queue string, timeout time.Duration) (*Delivery, error)
	Ack(ctx context.Context, d *Delivery) error
	// Retry re-schedules the job with Attempts incremented after delay.
	Retry(ctx context.Context, d *Delivery, delay time.Duration) error
	DeadLetter(ctx context.Context, d *Delivery, reason string) error
	// PromoteDue moves delayed jobs whose time has come back onto the queue.
	PromoteDue(ctx context.Context, queue string, now time.Time) (int, error)
	// RecoverInFlight puts jobs left in the processing list by a crashed
	// consumer back onto the queue.
	RecoverInFlight(ctx context.Context, queue string) (int, error)
}

func processingKey(queue string) string { return queue + ":processing" }
func delayedKey(queue string) string    { return queue + ":delayed" }
func dlqKey(queue string) string        { return DLQPrefix + queue }
