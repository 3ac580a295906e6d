// Package adapter is the data-access facade. Every logical operation
// tries the primary relational store first and degrades to the file
// cache on failure; reads never surface a backend error to the caller.
// Writes commit to the primary store synchronously and propagate to the
// cache through the sync queue.
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/cache"
	"github.com/vinsight/crm/internal/metrics"
	"github.com/vinsight/crm/internal/models"
	"github.com/vinsight/crm/internal/store"
)

// Mode selects whether the adapter may touch the primary store at all.
// It is fixed for the lifetime of the process.
type Mode int

const (
	// ModePrimary reads and writes through the primary store with the
	// cache as fallback.
	ModePrimary Mode = iota
	// ModeCacheOnly routes every operation directly to the cache store.
	ModeCacheOnly
)

// Emitter is the sync-queue surface the adapter fires after writes.
type Emitter interface {
	EmitSync(ctx context.Context, entity, id string, payload any)
	EmitRebuildIndex(ctx context.Context, customers []models.Customer)
	EmitRebuildSummary(ctx context.Context, customers []models.Customer, orders []models.Order)
	EmitRebuildMarketing(ctx context.Context)
}

// Adapter bridges the primary store and the cache store.
type Adapter struct {
	mode    Mode
	primary store.Primary // nil in ModeCacheOnly
	cache   cache.Store
	emitter Emitter
	logger  zerolog.Logger
}

// New creates a data adapter. primary must be non-nil unless mode is
// ModeCacheOnly.
func New(mode Mode, primary store.Primary, c cache.Store, emitter Emitter, logger zerolog.Logger) *Adapter {
	return &Adapter{mode: mode, primary: primary, cache: c, emitter: emitter, logger: logger}
}

// Primary exposes the underlying primary store, or nil in cache-only
// mode. Chat ingestion uses it for message upserts.
func (a *Adapter) Primary() store.Primary {
	if a.mode == ModeCacheOnly {
		return nil
	}
	return a.primary
}

// Cache exposes the underlying cache store.
func (a *Adapter) Cache() cache.Store {
	return a.cache
}

func (a *Adapter) usePrimary() bool {
	return a.mode == ModePrimary && a.primary != nil
}

func (a *Adapter) fellBack(op string, err error) {
	metrics.PrimaryFallbacks.WithLabelValues(op).Inc()
	a.logger.Warn().Err(err).Str("op", op).Msg("primary store failed, falling back to cache")
}

// Customer returns one customer aggregate, or (nil, nil) when it exists
// in neither store.
func (a *Adapter) Customer(ctx context.Context, id string) (*models.Customer, error) {
	if a.usePrimary() {
		c, err := a.primary.GetCustomer(ctx, id)
		if err == nil {
			return withAgent(c), nil
		}
		a.fellBack("get_customer", err)
	}

	c, ok := cache.ReadCustomer(a.cache, id)
	if !ok {
		return nil, nil
	}
	return withAgent(c), nil
}

// Customers returns all customer aggregates.
func (a *Adapter) Customers(ctx context.Context) ([]models.Customer, error) {
	if a.usePrimary() {
		customers, err := a.primary.ListCustomers(ctx)
		if err == nil {
			for i := range customers {
				withAgent(&customers[i])
			}
			return customers, nil
		}
		a.fellBack("list_customers", err)
	}

	customers := cache.ListCustomers(a.cache)
	for i := range customers {
		withAgent(&customers[i])
	}
	return customers, nil
}

// CustomerIndex returns the lightweight list projection. The cache path
// prefers the derived index artifact and only falls back to a full
// per-record scan when the index is missing.
func (a *Adapter) CustomerIndex(ctx context.Context) ([]models.ProjectedCustomer, error) {
	if a.usePrimary() {
		customers, err := a.primary.ListCustomers(ctx)
		if err == nil {
			rows := make([]models.ProjectedCustomer, 0, len(customers))
			for i := range customers {
				rows = append(rows, withAgent(&customers[i]).Project())
			}
			return rows, nil
		}
		a.fellBack("customer_index", err)
	}

	if doc, ok := cache.ReadIndex(a.cache); ok {
		return doc.Data, nil
	}

	customers := cache.ListCustomers(a.cache)
	rows := make([]models.ProjectedCustomer, 0, len(customers))
	for i := range customers {
		rows = append(rows, withAgent(&customers[i]).Project())
	}
	return rows, nil
}

// SaveCustomer commits the aggregate. The returned error reflects only
// the primary commit; cache propagation is asynchronous and invisible to
// the caller. In cache-only mode the write goes straight to the cache.
func (a *Adapter) SaveCustomer(ctx context.Context, c *models.Customer) error {
	if a.mode == ModeCacheOnly {
		if err := cache.WriteCustomer(a.cache, c.CustomerID, c, cache.SourcePrimary); err != nil {
			return err
		}
		a.emitter.EmitRebuildIndex(ctx, nil)
		return nil
	}

	if err := a.primary.UpsertCustomer(ctx, c); err != nil {
		return err
	}

	a.emitter.EmitSync(ctx, "customer", c.CustomerID, c)
	a.emitter.EmitRebuildIndex(ctx, nil)
	return nil
}

// Employees returns all staff records.
func (a *Adapter) Employees(ctx context.Context) ([]models.Employee, error) {
	if a.usePrimary() {
		employees, err := a.primary.ListEmployees(ctx)
		if err == nil {
			return employees, nil
		}
		a.fellBack("list_employees", err)
	}
	return decodeList[models.Employee](a.cache, "employee"), nil
}

// EmployeeByEmail returns one staff record, or (nil, nil) when unknown.
func (a *Adapter) EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	if a.usePrimary() {
		e, err := a.primary.GetEmployeeByEmail(ctx, email)
		if err == nil {
			return e, nil
		}
		a.fellBack("get_employee", err)
	}

	for _, e := range decodeList[models.Employee](a.cache, "employee") {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, nil
}

// Products returns the active catalog.
func (a *Adapter) Products(ctx context.Context) ([]models.Product, error) {
	if a.usePrimary() {
		products, err := a.primary.ListProducts(ctx)
		if err == nil {
			return products, nil
		}
		a.fellBack("list_products", err)
	}
	return decodeList[models.Product](a.cache, "products"), nil
}

// Campaigns returns all marketing campaigns.
func (a *Adapter) Campaigns(ctx context.Context) ([]models.Campaign, error) {
	if a.usePrimary() {
		campaigns, err := a.primary.ListCampaigns(ctx)
		if err == nil {
			return campaigns, nil
		}
		a.fellBack("list_campaigns", err)
	}
	return decodeList[models.Campaign](a.cache, "ads/campaign"), nil
}

// MarketingSummary aggregates campaign spend and lead counts. The cache
// path sums the daily rollup artifacts instead.
func (a *Adapter) MarketingSummary(ctx context.Context) (*models.MarketingSummary, error) {
	if a.usePrimary() {
		summary, err := a.marketingFromPrimary(ctx)
		if err == nil {
			return summary, nil
		}
		a.fellBack("marketing_summary", err)
	}

	summary := &models.MarketingSummary{}
	for _, raw := range a.cache.List("ads/daily") {
		var day struct {
			Spend float64 `json:"spend"`
			Leads int64   `json:"leads"`
		}
		if err := json.Unmarshal(raw, &day); err != nil {
			continue
		}
		summary.TotalSpend += day.Spend
		summary.TotalLeads += day.Leads
	}
	return summary, nil
}

func (a *Adapter) marketingFromPrimary(ctx context.Context) (*models.MarketingSummary, error) {
	campaigns, err := a.primary.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := a.primary.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.MarketingSummary{CampaignCount: len(campaigns)}
	for _, c := range campaigns {
		summary.TotalSpend += c.Spend
	}
	for i := range customers {
		if customers[i].LifecycleStage == "Lead" {
			summary.TotalLeads++
		}
	}
	return summary, nil
}

// Summary returns the analytics summary artifact. The primary path
// recomputes it live; the cache path serves the last rebuilt artifact.
func (a *Adapter) Summary(ctx context.Context) (*models.AnalyticsSummary, error) {
	if a.usePrimary() {
		customers, err := a.primary.ListCustomers(ctx)
		if err == nil {
			orders, oerr := a.primary.ListOrders(ctx)
			if oerr == nil {
				return cache.RebuildSummary(a.cache, customers, orders)
			}
			err = oerr
		}
		a.fellBack("summary", err)
	}

	var summary models.AnalyticsSummary
	if a.cache.Get("analytics", "summary", &summary) {
		return &summary, nil
	}
	return cache.RebuildSummary(a.cache, nil, nil)
}

// Audit appends an audit entry. Audit failures never block the calling
// operation; they are logged and dropped.
func (a *Adapter) Audit(ctx context.Context, e models.AuditEntry) {
	if !a.usePrimary() {
		return
	}
	if err := a.primary.AppendAuditLog(ctx, e); err != nil {
		a.logger.Warn().Err(err).Str("action", e.Action).Msg("audit write failed")
	}
}

// Stale reports whether a customer's cached profile is older than
// maxAge, for dashboard freshness badges.
func (a *Adapter) Stale(id string, maxAge time.Duration) bool {
	return !a.cache.Fresh("customer/"+id, "profile", maxAge)
}

// decodeList unmarshals every parsable entry of a cache kind into T,
// skipping entries that fail to decode.
func decodeList[T any](c cache.Store, kind string) []T {
	raws := c.List(kind)
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
