package store

import (
	"context"
	"time"

	"github.com/vinsight/crm/internal/models"
)

// Primary defines the interface for the relational source of truth.
// Both PostgresStore and SQLiteStore implement this interface.
//
// Lookup methods return (nil, nil) when the row does not exist; an error
// always means the store itself failed, which is what triggers the data
// adapter's cache fallback.
type Primary interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Customer operations
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpsertCustomer(ctx context.Context, c *models.Customer) error

	// Employee operations
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	UpsertEmployee(ctx context.Context, e *models.Employee) error

	// Catalog and marketing
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpsertProduct(ctx context.Context, p *models.Product) error
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	UpsertCampaign(ctx context.Context, c *models.Campaign) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	InsertOrder(ctx context.Context, o *models.Order) error
	ListDailyMetrics(ctx context.Context, since time.Time) ([]models.AdDailyMetric, error)
	UpsertDailyMetric(ctx context.Context, m *models.AdDailyMetric) error

	// Conversations and messages
	GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error)
	UpsertConversation(ctx context.Context, c *models.Conversation) error
	LastMessage(ctx context.Context, conversationID string) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	UpsertMessage(ctx context.Context, m *models.Message) error
	TouchConversation(ctx context.Context, conversationID string, lastMessageAt time.Time) error

	// Audit log
	AppendAuditLog(ctx context.Context, e models.AuditEntry) error
}
