package replication

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Sender publishes synchronously. *Publisher implements it.
type Sender interface {
	Publish(ctx context.Context, msgs ...Message) error
}

// Replicator is what services hold after a committed write. Send queues the
// publish and only logs failures, so a broker outage never fails or rolls
// back the write that triggered it. Queued sends are published one at a
// time in Send order, so two writes to the same entity reach the broker in
// commit order even when the first one is retrying. Publish is the blocking
// variant used by synchronize.
type Replicator struct {
	sender Sender

	mu      sync.Mutex
	pending []outgoing
	running bool
	wg      sync.WaitGroup
}

type outgoing struct {
	ctx  context.Context
	msgs []Message
}

func NewReplicator(sender Sender) *Replicator {
	return &Replicator{sender: sender}
}

func (r *Replicator) Send(ctx context.Context, msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wg.Add(1)
	r.pending = append(r.pending, outgoing{ctx: context.WithoutCancel(ctx), msgs: msgs})
	if !r.running {
		r.running = true
		go r.drain()
	}
}

// drain publishes queued sends until the queue is empty. Only one drain
// runs at a time.
func (r *Replicator) drain() {
	for {
		r.mu.Lock()
		if len(r.pending) == 0 {
			r.running = false
			r.mu.Unlock()
			return
		}
		next := r.pending[0]
		r.pending[0] = outgoing{}
		r.pending = r.pending[1:]
		r.mu.Unlock()

		r.publish(next)
		r.wg.Done()
	}
}

func (r *Replicator) publish(o outgoing) {
	start := time.Now()
	if err := r.sender.Publish(o.ctx, o.msgs...); err != nil {
		log.Error().Err(err).Int("messages", len(o.msgs)).Msg("replication: send failed")
		return
	}
	log.Debug().Int("messages", len(o.msgs)).Dur("runtime", time.Since(start)).Msg("replication: sent")
}

func (r *Replicator) Publish(ctx context.Context, msgs ...Message) error {
	return r.sender.Publish(ctx, msgs...)
}

// Wait blocks until every queued send has been published or given up.
func (r *Replicator) Wait() { r.wg.Wait() }
