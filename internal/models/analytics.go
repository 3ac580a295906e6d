package models

// CustomerKPIs aggregates customer counts for the analytics summary.
type CustomerKPIs struct {
	Total        int            `json:"total"`
	NewThisMonth int            `json:"newThisMonth"`
	ByTier       map[string]int `json:"byTier"`
	ByStatus     map[string]int `json:"byStatus"`
	ByChannel    map[string]int `json:"byChannel"`
}

// RevenueKPIs aggregates order revenue for the analytics summary.
type RevenueKPIs struct {
	Total      float64 `json:"total"`
	ThisMonth  float64 `json:"thisMonth"`
	OrderCount int     `json:"orderCount"`
	AOV        float64 `json:"aov"`
}

// AnalyticsSummary is the fully derived dashboard artifact. It is always
// recomputed from scratch, never patched.
type AnalyticsSummary struct {
	Customers CustomerKPIs `json:"customers"`
	Revenue   RevenueKPIs  `json:"revenue"`
}

// MarketingSummary is the campaign-level rollup served by the marketing
// dashboard header.
type MarketingSummary struct {
	TotalSpend    float64 `json:"totalSpend"`
	TotalLeads    int64   `json:"totalLeads"`
	CampaignCount int     `json:"campaignCount"`
}

// AuditEntry is one row in the audit log.
type AuditEntry struct {
	Actor   string         `json:"actor"`
	Action  string         `json:"action"`
	Target  string         `json:"target,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
