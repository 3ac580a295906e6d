package syncq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/cache"
	"github.com/vinsight/crm/internal/models"
	"github.com/vinsight/crm/internal/store"
)

// marketingWindow is how far back rebuild-marketing scans daily metrics.
const marketingWindow = 30 * 24 * time.Hour

// Handler executes sync jobs against the cache store. It must stay
// idempotent per job type: sync jobs carry full snapshots and rebuild
// jobs recompute their artifact from scratch.
type Handler struct {
	cache   cache.Store
	primary store.Primary // optional; rebuild-marketing is skipped without it
	logger  zerolog.Logger
}

// NewHandler creates a job handler. primary may be nil when the worker
// runs without a primary-store connection.
func NewHandler(c cache.Store, primary store.Primary, logger zerolog.Logger) *Handler {
	return &Handler{cache: c, primary: primary, logger: logger}
}

// Handle dispatches one job. A returned error triggers the worker's
// retry policy, except for ErrInvalidJob which is dropped immediately.
func (h *Handler) Handle(ctx context.Context, job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	switch job.Type {
	case TypeSync:
		return h.handleSync(job)
	case TypeRebuildIndex:
		n, err := cache.RebuildIndex(h.cache, job.Customers)
		if err == nil {
			h.logger.Info().Int("customers", n).Msg("customer index rebuilt")
		}
		return err
	case TypeRebuildSummary:
		_, err := cache.RebuildSummary(h.cache, job.Customers, job.Orders)
		if err == nil {
			h.logger.Info().Msg("analytics summary rebuilt")
		}
		return err
	case TypeRebuildMarketing:
		return h.handleRebuildMarketing(ctx)
	default:
		return fmt.Errorf("syncq: unhandled job type %q", job.Type)
	}
}

func (h *Handler) handleSync(job *Job) error {
	if job.Entity == "customer" {
		var c models.Customer
		if err := json.Unmarshal(job.Payload, &c); err != nil {
			return fmt.Errorf("%w: bad customer payload: %v", ErrInvalidJob, err)
		}
		return cache.WriteCustomer(h.cache, job.EntityID, &c, cache.SourcePrimary)
	}
	return h.cache.Put(job.Entity, job.EntityID, job.Payload, cache.SourcePrimary)
}

func (h *Handler) handleRebuildMarketing(ctx context.Context) error {
	if h.primary == nil {
		h.logger.Warn().Msg("rebuild-marketing skipped: no primary store configured")
		return nil
	}
	daily, err := h.primary.ListDailyMetrics(ctx, time.Now().Add(-marketingWindow))
	if err != nil {
		return err
	}
	days, err := cache.RebuildMarketing(h.cache, daily)
	if err == nil {
		h.logger.Info().Int("days", days).Msg("marketing rollups rebuilt")
	}
	return err
}
