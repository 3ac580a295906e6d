package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vinsight/crm/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the local and
// development backend; the schema mirrors PostgresStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/crm.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/crm.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		member_id TEXT DEFAULT '',
		first_name TEXT DEFAULT '',
		last_name TEXT DEFAULT '',
		nick_name TEXT DEFAULT '',
		status TEXT DEFAULT 'Active',
		membership_tier TEXT DEFAULT 'MEMBER',
		lifecycle_stage TEXT DEFAULT 'Lead',
		join_date DATETIME,
		email TEXT DEFAULT '',
		phone_primary TEXT DEFAULT '',
		facebook_id TEXT DEFAULT '',
		facebook_name TEXT DEFAULT '',
		lead_channel TEXT DEFAULT '',
		agent TEXT DEFAULT '',
		intelligence TEXT,
		conversation_id TEXT DEFAULT '',
		wallet_balance REAL DEFAULT 0,
		wallet_points INTEGER DEFAULT 0,
		wallet_currency TEXT DEFAULT 'THB',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS customer_inventory (
		customer_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		name TEXT DEFAULT '',
		quantity INTEGER DEFAULT 1,
		acquired_at DATETIME,
		PRIMARY KEY (customer_id, product_id)
	);

	CREATE TABLE IF NOT EXISTS cart_items (
		customer_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		name TEXT DEFAULT '',
		quantity INTEGER DEFAULT 1,
		unit_price REAL DEFAULT 0,
		PRIMARY KEY (customer_id, product_id)
	);

	CREATE TABLE IF NOT EXISTS employees (
		employee_id TEXT PRIMARY KEY,
		first_name TEXT DEFAULT '',
		last_name TEXT DEFAULT '',
		nick_name TEXT DEFAULT '',
		email TEXT UNIQUE NOT NULL,
		role TEXT DEFAULT '',
		password_hash TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS products (
		product_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT DEFAULT '',
		price REAL DEFAULT 0,
		is_active INTEGER DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS campaigns (
		campaign_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT DEFAULT '',
		spend REAL DEFAULT 0,
		started_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		customer_id TEXT DEFAULT '',
		amount REAL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ad_daily_metrics (
		ad_id TEXT NOT NULL,
		date DATETIME NOT NULL,
		spend REAL DEFAULT 0,
		impressions INTEGER DEFAULT 0,
		clicks INTEGER DEFAULT 0,
		leads INTEGER DEFAULT 0,
		purchases INTEGER DEFAULT 0,
		revenue REAL DEFAULT 0,
		PRIMARY KEY (ad_id, date)
	);

	CREATE TABLE IF NOT EXISTS conversations (
		conversation_id TEXT PRIMARY KEY,
		customer_id TEXT DEFAULT '',
		participant_id TEXT DEFAULT '',
		channel TEXT DEFAULT '',
		assigned_agent TEXT DEFAULT '',
		ad_id TEXT DEFAULT '',
		campaign_id TEXT DEFAULT '',
		last_message_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS messages (
		message_id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		session_id TEXT DEFAULT '',
		from_id TEXT DEFAULT '',
		from_name TEXT DEFAULT '',
		content TEXT DEFAULT '',
		ad_id TEXT DEFAULT '',
		has_attachment INTEGER DEFAULT 0,
		attachment_url TEXT DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor TEXT DEFAULT '',
		action TEXT NOT NULL,
		target TEXT DEFAULT '',
		details TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
	CREATE INDEX IF NOT EXISTS idx_metrics_date ON ad_daily_metrics(date);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomerRow(row rowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	var intel sql.NullString
	err := row.Scan(
		&c.CustomerID, &c.MemberID, &c.FirstName, &c.LastName, &c.NickName, &c.Status,
		&c.MembershipTier, &c.LifecycleStage, &c.JoinDate, &c.Email, &c.PhonePrimary, &c.FacebookID,
		&c.FacebookName, &c.LeadChannel, &c.Agent, &intel, &c.ConversationID,
		&c.Wallet.Balance, &c.Wallet.Points, &c.Wallet.Currency,
	)
	if err != nil {
		return nil, err
	}
	if intel.Valid && intel.String != "" {
		_ = json.Unmarshal([]byte(intel.String), &c.Intelligence)
	}
	return c, nil
}

// GetCustomer retrieves one customer aggregate, including inventory and
// cart rows.
func (s *SQLiteStore) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	c, err := scanCustomerRow(s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE customer_id = ?`, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	invRows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, acquired_at
		FROM customer_inventory WHERE customer_id = ? ORDER BY product_id
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer invRows.Close()
	for invRows.Next() {
		var it models.InventoryItem
		if err := invRows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.AcquiredAt); err != nil {
			return nil, err
		}
		c.Inventory = append(c.Inventory, it)
	}
	if err := invRows.Err(); err != nil {
		return nil, err
	}

	cartRows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, unit_price
		FROM cart_items WHERE customer_id = ? ORDER BY product_id
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer cartRows.Close()
	for cartRows.Next() {
		var it models.CartItem
		if err := cartRows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		c.Cart = append(c.Cart, it)
	}
	return c, cartRows.Err()
}

// ListCustomers retrieves all customer rows.
func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		c, err := scanCustomerRow(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// UpsertCustomer writes the full aggregate snapshot.
func (s *SQLiteStore) UpsertCustomer(ctx context.Context, c *models.Customer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var intel []byte
	if c.Intelligence != nil {
		if intel, err = json.Marshal(c.Intelligence); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO customers (
			customer_id, member_id, first_name, last_name, nick_name, status,
			membership_tier, lifecycle_stage, join_date, email, phone_primary, facebook_id,
			facebook_name, lead_channel, agent, intelligence, conversation_id,
			wallet_balance, wallet_points, wallet_currency, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT (customer_id) DO UPDATE SET
			member_id = excluded.member_id,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			nick_name = excluded.nick_name,
			status = excluded.status,
			membership_tier = excluded.membership_tier,
			lifecycle_stage = excluded.lifecycle_stage,
			join_date = excluded.join_date,
			email = excluded.email,
			phone_primary = excluded.phone_primary,
			facebook_id = excluded.facebook_id,
			facebook_name = excluded.facebook_name,
			lead_channel = excluded.lead_channel,
			agent = excluded.agent,
			intelligence = excluded.intelligence,
			conversation_id = excluded.conversation_id,
			wallet_balance = excluded.wallet_balance,
			wallet_points = excluded.wallet_points,
			wallet_currency = excluded.wallet_currency,
			updated_at = CURRENT_TIMESTAMP
	`, c.CustomerID, c.MemberID, c.FirstName, c.LastName, c.NickName, c.Status,
		c.MembershipTier, c.LifecycleStage, c.JoinDate, c.Email, c.PhonePrimary, c.FacebookID,
		c.FacebookName, c.LeadChannel, c.Agent, string(intel), c.ConversationID,
		c.Wallet.Balance, c.Wallet.Points, c.Wallet.Currency)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM customer_inventory WHERE customer_id = ?`, c.CustomerID); err != nil {
		return err
	}
	for _, it := range c.Inventory {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO customer_inventory (customer_id, product_id, name, quantity, acquired_at)
			VALUES (?,?,?,?,?)
		`, c.CustomerID, it.ProductID, it.Name, it.Quantity, it.AcquiredAt); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = ?`, c.CustomerID); err != nil {
		return err
	}
	for _, it := range c.Cart {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO cart_items (customer_id, product_id, name, quantity, unit_price)
			VALUES (?,?,?,?,?)
		`, c.CustomerID, it.ProductID, it.Name, it.Quantity, it.UnitPrice); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListEmployees retrieves all employees.
func (s *SQLiteStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, first_name, last_name, nick_name, email, role, password_hash, created_at
		FROM employees ORDER BY employee_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.EmployeeID, &e.FirstName, &e.LastName, &e.NickName,
			&e.Email, &e.Role, &e.PasswordHash, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// GetEmployeeByEmail retrieves an employee by email.
func (s *SQLiteStore) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	e := &models.Employee{}
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, first_name, last_name, nick_name, email, role, password_hash, created_at
		FROM employees WHERE email = ?
	`, email).Scan(&e.EmployeeID, &e.FirstName, &e.LastName, &e.NickName,
		&e.Email, &e.Role, &e.PasswordHash, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// UpsertEmployee inserts or updates an employee record.
func (s *SQLiteStore) UpsertEmployee(ctx context.Context, e *models.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (employee_id, first_name, last_name, nick_name, email, role, password_hash)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT (employee_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			nick_name = excluded.nick_name,
			email = excluded.email,
			role = excluded.role,
			password_hash = excluded.password_hash
	`, e.EmployeeID, e.FirstName, e.LastName, e.NickName, e.Email, e.Role, e.PasswordHash)
	return err
}

// ListProducts retrieves the active product catalog.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, category, price, is_active
		FROM products WHERE is_active = 1 ORDER BY product_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Category, &p.Price, &p.IsActive); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpsertProduct inserts or updates a catalog product.
func (s *SQLiteStore) UpsertProduct(ctx context.Context, p *models.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (product_id, name, category, price, is_active)
		VALUES (?,?,?,?,?)
		ON CONFLICT (product_id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			price = excluded.price,
			is_active = excluded.is_active
	`, p.ProductID, p.Name, p.Category, p.Price, p.IsActive)
	return err
}

// ListCampaigns retrieves all campaigns.
func (s *SQLiteStore) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT campaign_id, name, status, spend, started_at FROM campaigns ORDER BY campaign_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.CampaignID, &c.Name, &c.Status, &c.Spend, &c.StartedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// UpsertCampaign inserts or updates a campaign.
func (s *SQLiteStore) UpsertCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (campaign_id, name, status, spend, started_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT (campaign_id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			spend = excluded.spend,
			started_at = excluded.started_at
	`, c.CampaignID, c.Name, c.Status, c.Spend, c.StartedAt)
	return err
}

// ListOrders retrieves all orders.
func (s *SQLiteStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, customer_id, amount, created_at FROM orders ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.OrderID, &o.CustomerID, &o.Amount, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// InsertOrder records a new order. Orders are immutable once written.
func (s *SQLiteStore) InsertOrder(ctx context.Context, o *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (order_id, customer_id, amount, created_at)
		VALUES (?,?,?,?)
		ON CONFLICT (order_id) DO NOTHING
	`, o.OrderID, o.CustomerID, o.Amount, o.CreatedAt)
	return err
}

// ListDailyMetrics retrieves per-ad daily metrics since the given date.
func (s *SQLiteStore) ListDailyMetrics(ctx context.Context, since time.Time) ([]models.AdDailyMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ad_id, date, spend, impressions, clicks, leads, purchases, revenue
		FROM ad_daily_metrics WHERE date >= ? ORDER BY date, ad_id
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []models.AdDailyMetric
	for rows.Next() {
		var m models.AdDailyMetric
		if err := rows.Scan(&m.AdID, &m.Date, &m.Spend, &m.Impressions,
			&m.Clicks, &m.Leads, &m.Purchases, &m.Revenue); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// UpsertDailyMetric writes one ad-day metric row.
func (s *SQLiteStore) UpsertDailyMetric(ctx context.Context, m *models.AdDailyMetric) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ad_daily_metrics (ad_id, date, spend, impressions, clicks, leads, purchases, revenue)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT (ad_id, date) DO UPDATE SET
			spend = excluded.spend,
			impressions = excluded.impressions,
			clicks = excluded.clicks,
			leads = excluded.leads,
			purchases = excluded.purchases,
			revenue = excluded.revenue
	`, m.AdID, m.Date, m.Spend, m.Impressions, m.Clicks, m.Leads, m.Purchases, m.Revenue)
	return err
}

// GetConversation retrieves a conversation by its external ID.
func (s *SQLiteStore) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := s.db.QueryRowContext(ctx, `
		SELECT conversation_id, customer_id, participant_id, channel, assigned_agent,
			ad_id, campaign_id, last_message_at
		FROM conversations WHERE conversation_id = ?
	`, conversationID).Scan(&c.ConversationID, &c.CustomerID, &c.ParticipantID, &c.Channel,
		&c.AssignedAgent, &c.AdID, &c.CampaignID, &c.LastMessageAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// UpsertConversation inserts or updates a conversation record.
func (s *SQLiteStore) UpsertConversation(ctx context.Context, c *models.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (
			conversation_id, customer_id, participant_id, channel, assigned_agent,
			ad_id, campaign_id, last_message_at
		) VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT (conversation_id) DO UPDATE SET
			customer_id = excluded.customer_id,
			participant_id = excluded.participant_id,
			channel = excluded.channel,
			assigned_agent = excluded.assigned_agent,
			ad_id = excluded.ad_id,
			campaign_id = excluded.campaign_id,
			last_message_at = excluded.last_message_at
	`, c.ConversationID, c.CustomerID, c.ParticipantID, c.Channel, c.AssignedAgent,
		c.AdID, c.CampaignID, c.LastMessageAt)
	return err
}

func scanMessageRow(row rowScanner) (*models.Message, error) {
	m := &models.Message{}
	err := row.Scan(&m.MessageID, &m.ConversationID, &m.SessionID, &m.FromID, &m.FromName,
		&m.Content, &m.AdID, &m.HasAttachment, &m.AttachmentURL, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LastMessage retrieves the most recent message of a conversation.
func (s *SQLiteStore) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	m, err := scanMessageRow(s.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_id = ? ORDER BY created_at DESC LIMIT 1
	`, conversationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListMessages retrieves a conversation's messages in chronological order.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_id = ? ORDER BY created_at ASC LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		m, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// UpsertMessage inserts or updates a message, preserving an existing
// session assignment.
func (s *SQLiteStore) UpsertMessage(ctx context.Context, m *models.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (
			message_id, conversation_id, session_id, from_id, from_name,
			content, ad_id, has_attachment, attachment_url, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (message_id) DO UPDATE SET
			session_id = CASE WHEN messages.session_id = '' THEN excluded.session_id ELSE messages.session_id END,
			content = excluded.content,
			has_attachment = excluded.has_attachment,
			attachment_url = excluded.attachment_url
	`, m.MessageID, m.ConversationID, m.SessionID, m.FromID, m.FromName,
		m.Content, m.AdID, m.HasAttachment, m.AttachmentURL, m.CreatedAt)
	return err
}

// TouchConversation updates a conversation's last message timestamp.
func (s *SQLiteStore) TouchConversation(ctx context.Context, conversationID string, lastMessageAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET last_message_at = ? WHERE conversation_id = ?
	`, lastMessageAt, conversationID)
	return err
}

// AppendAuditLog appends one audit entry.
func (s *SQLiteStore) AppendAuditLog(ctx context.Context, e models.AuditEntry) error {
	var details []byte
	if e.Details != nil {
		var err error
		if details, err = json.Marshal(e.Details); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (actor, action, target, details) VALUES (?,?,?,?)
	`, e.Actor, e.Action, e.Target, string(details))
	return err
}
