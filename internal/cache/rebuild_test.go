package cache

import (
	"testing"
	"time"

	"github.com/vinsight/crm/internal/models"
)

func TestRebuildIndexFromSeed(t *testing.T) {
	s := newTestStore(t)

	seed := []models.Customer{
		{CustomerID: "CUS-1", FirstName: "Napat", MembershipTier: "GOLD", Status: "Active"},
		{CustomerID: "CUS-2", NickName: "Mali"},
	}
	n, err := RebuildIndex(s, seed)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 indexed, got %d", n)
	}

	doc, ok := ReadIndex(s)
	if !ok {
		t.Fatal("expected index artifact")
	}
	if !doc.IsIndex || doc.Total != 2 || len(doc.Data) != 2 {
		t.Fatalf("unexpected index: %+v", doc)
	}
	if doc.Data[0].Name != "Napat" || doc.Data[0].Tier != "GOLD" {
		t.Fatalf("unexpected projection: %+v", doc.Data[0])
	}
	// Projection defaults apply for sparse customers.
	if doc.Data[1].Tier != "GENERAL" || doc.Data[1].Status != "Active" {
		t.Fatalf("expected defaults, got %+v", doc.Data[1])
	}
}

func TestRebuildIndexScansCacheWithoutSeed(t *testing.T) {
	s := newTestStore(t)

	c := &models.Customer{CustomerID: "CUS-9", FirstName: "Korn"}
	if err := WriteCustomer(s, c.CustomerID, c, SourcePrimary); err != nil {
		t.Fatal(err)
	}

	n, err := RebuildIndex(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 indexed, got %d", n)
	}
}

func TestRebuildIndexIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	seed := []models.Customer{{CustomerID: "CUS-1"}}
	if _, err := RebuildIndex(s, seed); err != nil {
		t.Fatal(err)
	}
	first, _ := ReadIndex(s)

	if _, err := RebuildIndex(s, seed); err != nil {
		t.Fatal(err)
	}
	second, _ := ReadIndex(s)

	if first.Total != second.Total || len(first.Data) != len(second.Data) {
		t.Fatalf("rebuild changed the artifact: %+v vs %+v", first, second)
	}
}

func TestIndexEntryExcludedFromCustomerScan(t *testing.T) {
	s := newTestStore(t)

	c := &models.Customer{CustomerID: "CUS-1"}
	if err := WriteCustomer(s, c.CustomerID, c, SourcePrimary); err != nil {
		t.Fatal(err)
	}
	if _, err := RebuildIndex(s, nil); err != nil {
		t.Fatal(err)
	}

	// The index artifact must not turn up as a customer.
	got := ListCustomers(s)
	if len(got) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(got))
	}
}

func TestRebuildSummary(t *testing.T) {
	s := newTestStore(t)

	now := time.Now()
	lastYear := now.AddDate(-1, 0, 0)
	customers := []models.Customer{
		{CustomerID: "CUS-1", MembershipTier: "GOLD", Status: "Active", LeadChannel: "Facebook Ad", JoinDate: &now},
		{CustomerID: "CUS-2", JoinDate: &lastYear},
		{CustomerID: "CUS-3"},
	}
	orders := []models.Order{
		{OrderID: "ORD-1", Amount: 100, CreatedAt: now},
		{OrderID: "ORD-2", Amount: 201, CreatedAt: lastYear},
	}

	summary, err := RebuildSummary(s, customers, orders)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Customers.Total != 3 || summary.Customers.NewThisMonth != 1 {
		t.Fatalf("customer KPIs wrong: %+v", summary.Customers)
	}
	if summary.Customers.ByTier["GOLD"] != 1 || summary.Customers.ByTier["GENERAL"] != 2 {
		t.Fatalf("tier counts wrong: %+v", summary.Customers.ByTier)
	}
	if summary.Customers.ByChannel["Unknown"] != 2 {
		t.Fatalf("channel counts wrong: %+v", summary.Customers.ByChannel)
	}
	if summary.Revenue.Total != 301 || summary.Revenue.ThisMonth != 100 {
		t.Fatalf("revenue KPIs wrong: %+v", summary.Revenue)
	}
	// AOV is rounded to the nearest unit: 301/2 = 150.5 -> 151.
	if summary.Revenue.AOV != 151 {
		t.Fatalf("expected AOV 151, got %v", summary.Revenue.AOV)
	}

	var cached models.AnalyticsSummary
	if !s.Get("analytics", "summary", &cached) {
		t.Fatal("summary artifact not written")
	}
	if cached.Customers.Total != 3 {
		t.Fatalf("cached summary mismatch: %+v", cached)
	}
}

func TestRebuildMarketingGroupsByDay(t *testing.T) {
	s := newTestStore(t)

	day := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	daily := []models.AdDailyMetric{
		{AdID: "AD-1", Date: day, Spend: 100, Revenue: 300, Leads: 3},
		{AdID: "AD-2", Date: day.Add(2 * time.Hour), Spend: 50, Revenue: 0, Leads: 1},
		{AdID: "AD-1", Date: day.AddDate(0, 0, 1), Spend: 80, Revenue: 160},
	}

	n, err := RebuildMarketing(s, daily)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 days, got %d", n)
	}

	var r DailyRollup
	if !s.Get("ads/daily", "2026-08-20", &r) {
		t.Fatal("rollup for 2026-08-20 missing")
	}
	if r.Spend != 150 || r.Revenue != 300 || r.Leads != 4 {
		t.Fatalf("rollup aggregation wrong: %+v", r)
	}
	if r.ROAS != 2 {
		t.Fatalf("expected ROAS 2, got %v", r.ROAS)
	}
	if len(r.Ads) != 2 {
		t.Fatalf("expected 2 ad rows, got %d", len(r.Ads))
	}

	if !s.Get("ads/daily", "2026-08-21", &r) {
		t.Fatal("rollup for 2026-08-21 missing")
	}
	if r.Spend != 80 || r.ROAS != 2 {
		t.Fatalf("second day wrong: %+v", r)
	}
}
