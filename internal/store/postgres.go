package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinsight/crm/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool
// and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
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
		join_date TIMESTAMPTZ,
		email TEXT DEFAULT '',
		phone_primary TEXT DEFAULT '',
		facebook_id TEXT DEFAULT '',
		facebook_name TEXT DEFAULT '',
		lead_channel TEXT DEFAULT '',
		agent TEXT DEFAULT '',
		intelligence JSONB,
		conversation_id TEXT DEFAULT '',
		wallet_balance DOUBLE PRECISION DEFAULT 0,
		wallet_points BIGINT DEFAULT 0,
		wallet_currency TEXT DEFAULT 'THB',
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS customer_inventory (
		customer_id TEXT NOT NULL REFERENCES customers(customer_id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		name TEXT DEFAULT '',
		quantity INTEGER DEFAULT 1,
		acquired_at TIMESTAMPTZ,
		PRIMARY KEY (customer_id, product_id)
	);

	CREATE TABLE IF NOT EXISTS cart_items (
		customer_id TEXT NOT NULL REFERENCES customers(customer_id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		name TEXT DEFAULT '',
		quantity INTEGER DEFAULT 1,
		unit_price DOUBLE PRECISION DEFAULT 0,
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
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS products (
		product_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT DEFAULT '',
		price DOUBLE PRECISION DEFAULT 0,
		is_active BOOLEAN DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS campaigns (
		campaign_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT DEFAULT '',
		spend DOUBLE PRECISION DEFAULT 0,
		started_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		customer_id TEXT DEFAULT '',
		amount DOUBLE PRECISION DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS ad_daily_metrics (
		ad_id TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		spend DOUBLE PRECISION DEFAULT 0,
		impressions BIGINT DEFAULT 0,
		clicks BIGINT DEFAULT 0,
		leads BIGINT DEFAULT 0,
		purchases BIGINT DEFAULT 0,
		revenue DOUBLE PRECISION DEFAULT 0,
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
		last_message_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS messages (
		message_id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		session_id TEXT DEFAULT '',
		from_id TEXT DEFAULT '',
		from_name TEXT DEFAULT '',
		content TEXT DEFAULT '',
		ad_id TEXT DEFAULT '',
		has_attachment BOOLEAN DEFAULT FALSE,
		attachment_url TEXT DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		actor TEXT DEFAULT '',
		action TEXT NOT NULL,
		target TEXT DEFAULT '',
		details JSONB,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
	CREATE INDEX IF NOT EXISTS idx_metrics_date ON ad_daily_metrics(date);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const customerColumns = `customer_id, member_id, first_name, last_name, nick_name, status,
	membership_tier, lifecycle_stage, join_date, email, phone_primary, facebook_id,
	facebook_name, lead_channel, agent, intelligence, conversation_id,
	wallet_balance, wallet_points, wallet_currency`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	c := &models.Customer{}
	var intel []byte
	err := row.Scan(
		&c.CustomerID, &c.MemberID, &c.FirstName, &c.LastName, &c.NickName, &c.Status,
		&c.MembershipTier, &c.LifecycleStage, &c.JoinDate, &c.Email, &c.PhonePrimary, &c.FacebookID,
		&c.FacebookName, &c.LeadChannel, &c.Agent, &intel, &c.ConversationID,
		&c.Wallet.Balance, &c.Wallet.Points, &c.Wallet.Currency,
	)
	if err != nil {
		return nil, err
	}
	if len(intel) > 0 {
		_ = json.Unmarshal(intel, &c.Intelligence)
	}
	return c, nil
}

// GetCustomer retrieves one customer aggregate, including inventory and
// cart rows.
func (s *PostgresStore) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if c.Inventory, err = s.listInventory(ctx, customerID); err != nil {
		return nil, err
	}
	if c.Cart, err = s.listCart(ctx, customerID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) listInventory(ctx context.Context, customerID string) ([]models.InventoryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, name, quantity, acquired_at
		FROM customer_inventory WHERE customer_id = $1 ORDER BY product_id
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var it models.InventoryItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.AcquiredAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresStore) listCart(ctx context.Context, customerID string) ([]models.CartItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, name, quantity, unit_price
		FROM cart_items WHERE customer_id = $1 ORDER BY product_id
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListCustomers retrieves all customer rows without inventory or cart
// details; callers needing the full aggregate use GetCustomer.
func (s *PostgresStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// UpsertCustomer writes the full aggregate: the customer row is upserted
// and the inventory/cart tables are replaced with the new snapshot.
func (s *PostgresStore) UpsertCustomer(ctx context.Context, c *models.Customer) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var intel []byte
	if c.Intelligence != nil {
		if intel, err = json.Marshal(c.Intelligence); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO customers (
			customer_id, member_id, first_name, last_name, nick_name, status,
			membership_tier, lifecycle_stage, join_date, email, phone_primary, facebook_id,
			facebook_name, lead_channel, agent, intelligence, conversation_id,
			wallet_balance, wallet_points, wallet_currency, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,NOW())
		ON CONFLICT (customer_id) DO UPDATE SET
			member_id = EXCLUDED.member_id,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			nick_name = EXCLUDED.nick_name,
			status = EXCLUDED.status,
			membership_tier = EXCLUDED.membership_tier,
			lifecycle_stage = EXCLUDED.lifecycle_stage,
			join_date = EXCLUDED.join_date,
			email = EXCLUDED.email,
			phone_primary = EXCLUDED.phone_primary,
			facebook_id = EXCLUDED.facebook_id,
			facebook_name = EXCLUDED.facebook_name,
			lead_channel = EXCLUDED.lead_channel,
			agent = EXCLUDED.agent,
			intelligence = EXCLUDED.intelligence,
			conversation_id = EXCLUDED.conversation_id,
			wallet_balance = EXCLUDED.wallet_balance,
			wallet_points = EXCLUDED.wallet_points,
			wallet_currency = EXCLUDED.wallet_currency,
			updated_at = NOW()
	`, c.CustomerID, c.MemberID, c.FirstName, c.LastName, c.NickName, c.Status,
		c.MembershipTier, c.LifecycleStage, c.JoinDate, c.Email, c.PhonePrimary, c.FacebookID,
		c.FacebookName, c.LeadChannel, c.Agent, intel, c.ConversationID,
		c.Wallet.Balance, c.Wallet.Points, c.Wallet.Currency)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM customer_inventory WHERE customer_id = $1`, c.CustomerID); err != nil {
		return err
	}
	for _, it := range c.Inventory {
		if _, err = tx.Exec(ctx, `
			INSERT INTO customer_inventory (customer_id, product_id, name, quantity, acquired_at)
			VALUES ($1,$2,$3,$4,$5)
		`, c.CustomerID, it.ProductID, it.Name, it.Quantity, it.AcquiredAt); err != nil {
			return err
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, c.CustomerID); err != nil {
		return err
	}
	for _, it := range c.Cart {
		if _, err = tx.Exec(ctx, `
			INSERT INTO cart_items (customer_id, product_id, name, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5)
		`, c.CustomerID, it.ProductID, it.Name, it.Quantity, it.UnitPrice); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListEmployees retrieves all employees.
func (s *PostgresStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.pool.Query(ctx, `
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
func (s *PostgresStore) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	e := &models.Employee{}
	err := s.pool.QueryRow(ctx, `
		SELECT employee_id, first_name, last_name, nick_name, email, role, password_hash, created_at
		FROM employees WHERE email = $1
	`, email).Scan(&e.EmployeeID, &e.FirstName, &e.LastName, &e.NickName,
		&e.Email, &e.Role, &e.PasswordHash, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// UpsertEmployee inserts or updates an employee record.
func (s *PostgresStore) UpsertEmployee(ctx context.Context, e *models.Employee) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (employee_id, first_name, last_name, nick_name, email, role, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (employee_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			nick_name = EXCLUDED.nick_name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			password_hash = EXCLUDED.password_hash
	`, e.EmployeeID, e.FirstName, e.LastName, e.NickName, e.Email, e.Role, e.PasswordHash)
	return err
}

// ListProducts retrieves the active product catalog.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, name, category, price, is_active
		FROM products WHERE is_active = TRUE ORDER BY product_id
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
func (s *PostgresStore) UpsertProduct(ctx context.Context, p *models.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (product_id, name, category, price, is_active)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (product_id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			is_active = EXCLUDED.is_active
	`, p.ProductID, p.Name, p.Category, p.Price, p.IsActive)
	return err
}

// ListCampaigns retrieves all campaigns.
func (s *PostgresStore) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT campaign_id, name, status, spend, started_at
		FROM campaigns ORDER BY campaign_id
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
func (s *PostgresStore) UpsertCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO campaigns (campaign_id, name, status, spend, started_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (campaign_id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			spend = EXCLUDED.spend,
			started_at = EXCLUDED.started_at
	`, c.CampaignID, c.Name, c.Status, c.Spend, c.StartedAt)
	return err
}

// ListOrders retrieves all orders.
func (s *PostgresStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.pool.Query(ctx, `
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
func (s *PostgresStore) InsertOrder(ctx context.Context, o *models.Order) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO orders (order_id, customer_id, amount, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (order_id) DO NOTHING
	`, o.OrderID, o.CustomerID, o.Amount, o.CreatedAt)
	return err
}

// ListDailyMetrics retrieves per-ad daily metrics since the given date.
func (s *PostgresStore) ListDailyMetrics(ctx context.Context, since time.Time) ([]models.AdDailyMetric, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ad_id, date, spend, impressions, clicks, leads, purchases, revenue
		FROM ad_daily_metrics WHERE date >= $1 ORDER BY date, ad_id
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

// UpsertDailyMetric writes one ad-day metric row. Re-ingesting a day
// replaces its numbers, keeping marketing syncs idempotent.
func (s *PostgresStore) UpsertDailyMetric(ctx context.Context, m *models.AdDailyMetric) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ad_daily_metrics (ad_id, date, spend, impressions, clicks, leads, purchases, revenue)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (ad_id, date) DO UPDATE SET
			spend = EXCLUDED.spend,
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			leads = EXCLUDED.leads,
			purchases = EXCLUDED.purchases,
			revenue = EXCLUDED.revenue
	`, m.AdID, m.Date, m.Spend, m.Impressions, m.Clicks, m.Leads, m.Purchases, m.Revenue)
	return err
}

// GetConversation retrieves a conversation by its external ID.
func (s *PostgresStore) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := s.pool.QueryRow(ctx, `
		SELECT conversation_id, customer_id, participant_id, channel, assigned_agent,
			ad_id, campaign_id, last_message_at
		FROM conversations WHERE conversation_id = $1
	`, conversationID).Scan(&c.ConversationID, &c.CustomerID, &c.ParticipantID, &c.Channel,
		&c.AssignedAgent, &c.AdID, &c.CampaignID, &c.LastMessageAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// UpsertConversation inserts or updates a conversation record.
func (s *PostgresStore) UpsertConversation(ctx context.Context, c *models.Conversation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversations (
			conversation_id, customer_id, participant_id, channel, assigned_agent,
			ad_id, campaign_id, last_message_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (conversation_id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			participant_id = EXCLUDED.participant_id,
			channel = EXCLUDED.channel,
			assigned_agent = EXCLUDED.assigned_agent,
			ad_id = EXCLUDED.ad_id,
			campaign_id = EXCLUDED.campaign_id,
			last_message_at = EXCLUDED.last_message_at
	`, c.ConversationID, c.CustomerID, c.ParticipantID, c.Channel, c.AssignedAgent,
		c.AdID, c.CampaignID, c.LastMessageAt)
	return err
}

const messageColumns = `message_id, conversation_id, session_id, from_id, from_name,
	content, ad_id, has_attachment, attachment_url, created_at`

func scanMessage(row pgx.Row) (*models.Message, error) {
	m := &models.Message{}
	err := row.Scan(&m.MessageID, &m.ConversationID, &m.SessionID, &m.FromID, &m.FromName,
		&m.Content, &m.AdID, &m.HasAttachment, &m.AttachmentURL, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LastMessage retrieves the most recent message of a conversation.
func (s *PostgresStore) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	m, err := scanMessage(s.pool.QueryRow(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_id = $1 ORDER BY created_at DESC LIMIT 1
	`, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListMessages retrieves a conversation's messages in chronological
// order, which is the order the segmentation engine requires.
func (s *PostgresStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_id = $1 ORDER BY created_at ASC LIMIT $2
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// UpsertMessage inserts or updates a message. An existing non-empty
// session_id always wins, so re-ingestion never moves a message to a
// different session.
func (s *PostgresStore) UpsertMessage(ctx context.Context, m *models.Message) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (
			message_id, conversation_id, session_id, from_id, from_name,
			content, ad_id, has_attachment, attachment_url, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (message_id) DO UPDATE SET
			session_id = CASE WHEN messages.session_id = '' THEN EXCLUDED.session_id ELSE messages.session_id END,
			content = EXCLUDED.content,
			has_attachment = EXCLUDED.has_attachment,
			attachment_url = EXCLUDED.attachment_url
	`, m.MessageID, m.ConversationID, m.SessionID, m.FromID, m.FromName,
		m.Content, m.AdID, m.HasAttachment, m.AttachmentURL, m.CreatedAt)
	return err
}

// TouchConversation updates a conversation's last message timestamp.
func (s *PostgresStore) TouchConversation(ctx context.Context, conversationID string, lastMessageAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE conversations SET last_message_at = $2 WHERE conversation_id = $1
	`, conversationID, lastMessageAt)
	return err
}

// AppendAuditLog appends one audit entry.
func (s *PostgresStore) AppendAuditLog(ctx context.Context, e models.AuditEntry) error {
	var details []byte
	if e.Details != nil {
		var err error
		if details, err = json.Marshal(e.Details); err != nil {
			return err
		}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (actor, action, target, details) VALUES ($1,$2,$3,$4)
	`, e.Actor, e.Action, e.Target, details)
	return err
}
