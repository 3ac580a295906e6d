// Package syncq propagates primary-store writes into the cache through a
// durable, retryable job queue, decoupling write latency from cache
// propagation. Every handler is idempotent: a retried or duplicated job
// is indistinguishable from a fresh one.
package syncq

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/vinsight/crm/internal/models"
)

// Type identifies a sync job variant. Dispatch happens through a single
// switch so an unhandled variant fails loudly instead of silently.
type Type string

const (
	// TypeSync writes one entity's post-write snapshot into the cache.
	TypeSync Type = "sync"
	// TypeRebuildIndex fully recomputes the customer index.
	TypeRebuildIndex Type = "rebuild-index"
	// TypeRebuildSummary fully recomputes the analytics summary.
	TypeRebuildSummary Type = "rebuild-summary"
	// TypeRebuildMarketing fully recomputes the daily ad rollups.
	TypeRebuildMarketing Type = "rebuild-marketing"
)

// Job is one unit of cache-propagation work. Sync jobs carry the full
// canonical snapshot, never a delta, so concurrent jobs touching the
// same entity are safely last-write-wins. Rebuild jobs may carry an
// optional seed list to skip a redundant read pass.
type Job struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	Entity     string            `json:"entity,omitempty"`
	EntityID   string            `json:"entityId,omitempty"`
	Payload    json.RawMessage   `json:"payload,omitempty"`
	Customers  []models.Customer `json:"customers,omitempty"`
	Orders     []models.Order    `json:"orders,omitempty"`
	Attempts   int               `json:"attempts"`
	EnqueuedAt time.Time         `json:"enqueuedAt"`
}

// ErrInvalidJob marks a job whose required fields are missing. Such jobs
// are never retried; retrying cannot make them valid.
var ErrInvalidJob = errors.New("syncq: invalid job")

// Validate checks the per-type field requirements.
func (j *Job) Validate() error {
	switch j.Type {
	case TypeSync:
		if j.Entity == "" || j.EntityID == "" || len(j.Payload) == 0 {
			return ErrInvalidJob
		}
	case TypeRebuildIndex, TypeRebuildSummary, TypeRebuildMarketing:
		// rebuilds carry no per-entity key
	default:
		return ErrInvalidJob
	}
	return nil
}
