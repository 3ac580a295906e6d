package models

import "time"

// Campaign is a marketing campaign tracked for spend attribution.
type Campaign struct {
	CampaignID string     `json:"campaignId"`
	Name       string     `json:"name"`
	Status     string     `json:"status,omitempty"`
	Spend      float64    `json:"spend"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
}

// AdDailyMetric is one ad's performance for one day, as ingested from the
// ads platform. The marketing rebuild groups these by date.
type AdDailyMetric struct {
	AdID        string    `json:"ad_id"`
	Date        time.Time `json:"date"`
	Spend       float64   `json:"spend"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Leads       int64     `json:"leads"`
	Purchases   int64     `json:"purchases"`
	Revenue     float64   `json:"revenue"`
}
