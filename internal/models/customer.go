package models

import "time"

// Customer is the logical customer aggregate. In the primary store it is
// one row plus related tables; in the cache it is stored as four
// independently written fragments (profile, wallet, inventory, cart).
type Customer struct {
	CustomerID     string         `json:"customerId"`
	MemberID       string         `json:"memberId,omitempty"`
	FirstName      string         `json:"firstName,omitempty"`
	LastName       string         `json:"lastName,omitempty"`
	NickName       string         `json:"nickName,omitempty"`
	Status         string         `json:"status,omitempty"`
	MembershipTier string         `json:"membershipTier,omitempty"`
	LifecycleStage string         `json:"lifecycleStage,omitempty"`
	JoinDate       *time.Time     `json:"joinDate,omitempty"`
	Email          string         `json:"email,omitempty"`
	PhonePrimary   string         `json:"phonePrimary,omitempty"`
	FacebookID     string         `json:"facebookId,omitempty"`
	FacebookName   string         `json:"facebookName,omitempty"`
	LeadChannel    string         `json:"leadChannel,omitempty"`
	Agent          string         `json:"agent,omitempty"`
	Intelligence   map[string]any `json:"intelligence,omitempty"`
	ConversationID string         `json:"conversationId,omitempty"`

	Wallet    Wallet          `json:"wallet"`
	Inventory []InventoryItem `json:"inventory,omitempty"`
	Cart      []CartItem      `json:"cart,omitempty"`
}

// Name returns the customer's display name.
func (c *Customer) Name() string {
	if c.NickName != "" {
		return c.NickName
	}
	n := c.FirstName
	if c.LastName != "" {
		if n != "" {
			n += " "
		}
		n += c.LastName
	}
	if n == "" {
		return "Unknown"
	}
	return n
}

// Wallet holds the customer's balance and loyalty points.
type Wallet struct {
	Balance  float64 `json:"balance"`
	Points   int64   `json:"points"`
	Currency string  `json:"currency"`
}

// InventoryItem is a product the customer owns.
type InventoryItem struct {
	ProductID  string     `json:"productId"`
	Name       string     `json:"name,omitempty"`
	Quantity   int        `json:"quantity"`
	AcquiredAt *time.Time `json:"acquiredAt,omitempty"`
}

// CartItem is a pending line item in the customer's cart.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// ProjectedCustomer is the slim row stored in the derived customer index,
// enough to render a list without loading full profiles.
type ProjectedCustomer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Tier    string `json:"tier"`
	Status  string `json:"status"`
	Agent   string `json:"agent,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// Project reduces the aggregate to its index row.
func (c *Customer) Project() ProjectedCustomer {
	tier := c.MembershipTier
	if tier == "" {
		tier = "GENERAL"
	}
	status := c.Status
	if status == "" {
		status = "Active"
	}
	return ProjectedCustomer{
		ID:      c.CustomerID,
		Name:    c.Name(),
		Tier:    tier,
		Status:  status,
		Agent:   c.Agent,
		Channel: c.LeadChannel,
	}
}
