package syncq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/cache"
	"github.com/vinsight/crm/internal/metrics"
	"github.com/vinsight/crm/internal/models"
)

// Pusher is the enqueue side of the queue. It is narrow so tests can
// substitute a failing broker.
type Pusher interface {
	Push(ctx context.Context, job *Job) error
}

// Emitter fires sync jobs after primary-store writes. Emit methods never
// return errors: when the broker is down (or not configured) they
// degrade to a synchronous direct cache write, so a write is never
// silently lost. That direct write is the only guaranteed-delivery path;
// rebuild jobs are safe to simply rerun later.
type Emitter struct {
	queue  Pusher // may be nil when no broker is configured
	cache  cache.Store
	logger zerolog.Logger
}

// NewEmitter creates an emitter. queue may be nil, in which case every
// emit takes the direct-write path.
func NewEmitter(queue Pusher, c cache.Store, logger zerolog.Logger) *Emitter {
	return &Emitter{queue: queue, cache: c, logger: logger}
}

func (e *Emitter) push(ctx context.Context, job *Job) bool {
	if e.queue == nil {
		return false
	}
	job.ID = ulid.Make().String()
	job.EnqueuedAt = time.Now().UTC()
	if err := e.queue.Push(ctx, job); err != nil {
		e.logger.Warn().Err(err).Str("type", string(job.Type)).Msg("enqueue failed, falling back to direct write")
		return false
	}
	metrics.JobsEnqueued.WithLabelValues(string(job.Type)).Inc()
	return true
}

// EmitSync enqueues a cache write for one entity's post-write snapshot.
// On enqueue failure the snapshot is written to the cache directly.
func (e *Emitter) EmitSync(ctx context.Context, entity, id string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error().Err(err).Str("entity", entity).Str("id", id).Msg("sync payload not serializable")
		return
	}

	if e.push(ctx, &Job{Type: TypeSync, Entity: entity, EntityID: id, Payload: raw}) {
		return
	}

	metrics.EnqueueFallbacks.Inc()
	if entity == "customer" {
		var c models.Customer
		if err := json.Unmarshal(raw, &c); err != nil {
			e.logger.Error().Err(err).Str("id", id).Msg("direct customer write failed")
			return
		}
		if err := cache.WriteCustomer(e.cache, id, &c, cache.SourceFallback); err != nil {
			e.logger.Error().Err(err).Str("id", id).Msg("direct customer write failed")
		}
		return
	}
	if err := e.cache.Put(entity, id, json.RawMessage(raw), cache.SourceFallback); err != nil {
		e.logger.Error().Err(err).Str("entity", entity).Str("id", id).Msg("direct cache write failed")
	}
}

// EmitRebuildIndex enqueues a customer index rebuild, optionally seeded
// with a fresh list to avoid re-reading cache files. On enqueue failure
// the rebuild runs inline.
func (e *Emitter) EmitRebuildIndex(ctx context.Context, customers []models.Customer) {
	if e.push(ctx, &Job{Type: TypeRebuildIndex, Customers: customers}) {
		return
	}
	if _, err := cache.RebuildIndex(e.cache, customers); err != nil {
		e.logger.Error().Err(err).Msg("inline index rebuild failed")
	}
}

// EmitRebuildSummary enqueues an analytics summary rebuild. On enqueue
// failure the rebuild runs inline.
func (e *Emitter) EmitRebuildSummary(ctx context.Context, customers []models.Customer, orders []models.Order) {
	if e.push(ctx, &Job{Type: TypeRebuildSummary, Customers: customers, Orders: orders}) {
		return
	}
	if _, err := cache.RebuildSummary(e.cache, customers, orders); err != nil {
		e.logger.Error().Err(err).Msg("inline summary rebuild failed")
	}
}

// EmitRebuildMarketing enqueues a marketing rollup rebuild. There is no
// inline fallback: the rebuild needs the primary store and is safe to
// rerun whenever the queue comes back.
func (e *Emitter) EmitRebuildMarketing(ctx context.Context) {
	e.push(ctx, &Job{Type: TypeRebuildMarketing})
}
