package cache

import (
	"math"
	"time"

	"github.com/vinsight/crm/internal/models"
)

// Derived artifacts are always recomputed in full from their inputs.
// Patching them incrementally would let a missed update diverge forever;
// a full rebuild is O(n) but safe to run at any time, any number of
// times.

const (
	indexEntryID   = "__index__"
	analyticsKind  = "analytics"
	summaryEntryID = "summary"
	marketingKind  = "ads/daily"
	dateLayout     = "2006-01-02"
)

// IndexDoc is the customer index artifact at customer/__index__.json.
type IndexDoc struct {
	IsIndex bool                       `json:"__isIndex"`
	Total   int                        `json:"total"`
	Data    []models.ProjectedCustomer `json:"data"`
}

// RebuildIndex recomputes the customer index from the given list, or from
// the cached profile fragments when seed is empty. Returns the number of
// indexed customers.
func RebuildIndex(s Store, seed []models.Customer) (int, error) {
	source := seed
	if len(source) == 0 {
		source = ListCustomers(s)
	}

	rows := make([]models.ProjectedCustomer, 0, len(source))
	for i := range source {
		rows = append(rows, source[i].Project())
	}

	doc := IndexDoc{IsIndex: true, Total: len(rows), Data: rows}
	if err := s.Put(customerKind, indexEntryID, doc, SourcePrimary); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ReadIndex returns the cached customer index, if present.
func ReadIndex(s Store) (*IndexDoc, bool) {
	var doc IndexDoc
	if !s.Get(customerKind, indexEntryID, &doc) || !doc.IsIndex {
		return nil, false
	}
	return &doc, true
}

// RebuildSummary recomputes the analytics summary from customers and
// orders. When customers is empty the cached aggregates are scanned
// instead.
func RebuildSummary(s Store, customers []models.Customer, orders []models.Order) (*models.AnalyticsSummary, error) {
	if len(customers) == 0 {
		customers = ListCustomers(s)
	}

	now := time.Now()
	month, year := now.Month(), now.Year()

	kpi := models.CustomerKPIs{
		Total:     len(customers),
		ByTier:    map[string]int{},
		ByStatus:  map[string]int{},
		ByChannel: map[string]int{},
	}
	for i := range customers {
		c := &customers[i]
		if c.JoinDate != nil && c.JoinDate.Month() == month && c.JoinDate.Year() == year {
			kpi.NewThisMonth++
		}
		tier := c.MembershipTier
		if tier == "" {
			tier = "GENERAL"
		}
		kpi.ByTier[tier]++
		status := c.Status
		if status == "" {
			status = "Active"
		}
		kpi.ByStatus[status]++
		channel := c.LeadChannel
		if channel == "" {
			channel = "Unknown"
		}
		kpi.ByChannel[channel]++
	}

	rev := models.RevenueKPIs{OrderCount: len(orders)}
	for _, o := range orders {
		rev.Total += o.Amount
		if o.CreatedAt.Month() == month && o.CreatedAt.Year() == year {
			rev.ThisMonth += o.Amount
		}
	}
	if len(orders) > 0 {
		rev.AOV = math.Round(rev.Total / float64(len(orders)))
	}

	summary := &models.AnalyticsSummary{Customers: kpi, Revenue: rev}
	if err := s.Put(analyticsKind, summaryEntryID, summary, SourcePrimary); err != nil {
		return nil, err
	}
	return summary, nil
}

// DailyRollup is one day's aggregated ad performance at
// ads/daily/{date}.json.
type DailyRollup struct {
	Date        string                 `json:"date"`
	Spend       float64                `json:"spend"`
	Impressions int64                  `json:"impressions"`
	Clicks      int64                  `json:"clicks"`
	Leads       int64                  `json:"leads"`
	Purchases   int64                  `json:"purchases"`
	Revenue     float64                `json:"revenue"`
	ROAS        float64                `json:"roas"`
	Ads         []models.AdDailyMetric `json:"ads"`
}

// RebuildMarketing groups per-ad daily metrics by date and rewrites one
// rollup entry per day. Returns the number of days written.
func RebuildMarketing(s Store, daily []models.AdDailyMetric) (int, error) {
	byDate := map[string]*DailyRollup{}
	for _, m := range daily {
		d := m.Date.UTC().Format(dateLayout)
		r := byDate[d]
		if r == nil {
			r = &DailyRollup{Date: d}
			byDate[d] = r
		}
		r.Spend += m.Spend
		r.Impressions += m.Impressions
		r.Clicks += m.Clicks
		r.Leads += m.Leads
		r.Purchases += m.Purchases
		r.Revenue += m.Revenue
		r.Ads = append(r.Ads, m)
	}

	for d, r := range byDate {
		if r.Spend > 0 {
			r.ROAS = r.Revenue / r.Spend
		}
		if err := s.Put(marketingKind, d, r, SourcePrimary); err != nil {
			return 0, err
		}
	}
	return len(byDate), nil
}
