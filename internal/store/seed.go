package store

import (
	"context"
	"time"

	"github.com/vinsight/crm/internal/models"
)

// Seed loads a small demo dataset through the Primary interface, so it
// works identically against PostgreSQL and SQLite. Re-running it is safe:
// every write is an upsert.
func Seed(ctx context.Context, s Primary, adminPasswordHash string) error {
	now := time.Now().UTC()
	join := now.AddDate(0, -3, 0)

	employees := []models.Employee{
		{EmployeeID: "EMP-001", FirstName: "Ariya", NickName: "Ice", Email: "admin@vinsight.local", Role: "admin", PasswordHash: adminPasswordHash},
		{EmployeeID: "EMP-002", FirstName: "Korn", NickName: "K", Email: "sales-a@vinsight.local", Role: "sales"},
	}
	for i := range employees {
		if err := s.UpsertEmployee(ctx, &employees[i]); err != nil {
			return err
		}
	}

	products := []models.Product{
		{ProductID: "PRD-101", Name: "Starter Course", Category: "course", Price: 4900, IsActive: true},
		{ProductID: "PRD-102", Name: "Pro Course", Category: "course", Price: 12900, IsActive: true},
		{ProductID: "PRD-201", Name: "Private Coaching", Category: "service", Price: 29000, IsActive: true},
	}
	for i := range products {
		if err := s.UpsertProduct(ctx, &products[i]); err != nil {
			return err
		}
	}

	campaignStart := now.AddDate(0, -1, 0)
	campaigns := []models.Campaign{
		{CampaignID: "CMP-2024-Q3", Name: "Q3 Lead Gen", Status: "active", Spend: 42000, StartedAt: &campaignStart},
	}
	for i := range campaigns {
		if err := s.UpsertCampaign(ctx, &campaigns[i]); err != nil {
			return err
		}
	}

	customers := []models.Customer{
		{
			CustomerID: "CUS-DEMO-001", FirstName: "Napat", NickName: "Beam",
			Status: "Active", MembershipTier: "GOLD", LifecycleStage: "Customer",
			JoinDate: &join, Email: "beam@example.com", LeadChannel: "Facebook Ad",
			Agent: "Ice", ConversationID: "t_1001",
			Wallet: models.Wallet{Balance: 1500, Points: 320, Currency: "THB"},
			Inventory: []models.InventoryItem{
				{ProductID: "PRD-101", Name: "Starter Course", Quantity: 1},
			},
		},
		{
			CustomerID: "CUS-DEMO-002", FirstName: "Mali",
			Status: "Active", MembershipTier: "GENERAL", LifecycleStage: "Lead",
			JoinDate: &now, LeadChannel: "Organic",
			Wallet: models.Wallet{Currency: "THB"},
			Cart: []models.CartItem{
				{ProductID: "PRD-102", Name: "Pro Course", Quantity: 1, UnitPrice: 12900},
			},
		},
	}
	for i := range customers {
		if err := s.UpsertCustomer(ctx, &customers[i]); err != nil {
			return err
		}
	}

	if err := s.UpsertConversation(ctx, &models.Conversation{
		ConversationID: "t_1001",
		CustomerID:     "CUS-DEMO-001",
		ParticipantID:  "fb_9001",
		Channel:        "facebook",
		AssignedAgent:  "Ice",
		AdID:           "AD-7001",
		CampaignID:     "CMP-2024-Q3",
	}); err != nil {
		return err
	}

	orders := []models.Order{
		{OrderID: "ORD-5001", CustomerID: "CUS-DEMO-001", Amount: 4900, CreatedAt: now.AddDate(0, -2, 0)},
		{OrderID: "ORD-5002", CustomerID: "CUS-DEMO-001", Amount: 1200, CreatedAt: now.AddDate(0, 0, -10)},
	}
	for i := range orders {
		if err := s.InsertOrder(ctx, &orders[i]); err != nil {
			return err
		}
	}

	for day := 0; day < 7; day++ {
		date := now.AddDate(0, 0, -day).Truncate(24 * time.Hour)
		m := models.AdDailyMetric{
			AdID: "AD-7001", Date: date,
			Spend: 600, Impressions: 12000, Clicks: 340,
			Leads: 9, Purchases: 2, Revenue: 9800,
		}
		if err := s.UpsertDailyMetric(ctx, &m); err != nil {
			return err
		}
	}

	return nil
}
