package cache

import (
	"time"

	"github.com/vinsight/crm/internal/models"
)

// The customer aggregate is cached as four fragments under
// customer/{id}/: profile, wallet, inventory and cart. Each fragment is
// written independently so a wallet update does not re-serialize the
// profile or the cart. Fragments may therefore sit at different
// freshness; the fragment is the unit of atomicity.

const customerKind = "customer"

type profileDoc struct {
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
}

type inventoryDoc struct {
	Items []models.InventoryItem `json:"items"`
}

type cartDoc struct {
	Items []models.CartItem `json:"items"`
}

func customerNS(id string) string {
	return customerKind + "/" + id
}

// WriteCustomer decomposes the aggregate into its four fragments and
// writes each one via Put.
func WriteCustomer(s Store, id string, c *models.Customer, src Source) error {
	ns := customerNS(id)

	profile := profileDoc{
		CustomerID:     c.CustomerID,
		MemberID:       c.MemberID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		NickName:       c.NickName,
		Status:         c.Status,
		MembershipTier: c.MembershipTier,
		LifecycleStage: c.LifecycleStage,
		JoinDate:       c.JoinDate,
		Email:          c.Email,
		PhonePrimary:   c.PhonePrimary,
		FacebookID:     c.FacebookID,
		FacebookName:   c.FacebookName,
		LeadChannel:    c.LeadChannel,
		Agent:          c.Agent,
		Intelligence:   c.Intelligence,
		ConversationID: c.ConversationID,
	}
	if err := s.Put(ns, "profile", profile, src); err != nil {
		return err
	}

	wallet := c.Wallet
	if wallet.Currency == "" {
		wallet.Currency = "THB"
	}
	if err := s.Put(ns, "wallet", wallet, src); err != nil {
		return err
	}

	inv := inventoryDoc{Items: c.Inventory}
	if inv.Items == nil {
		inv.Items = []models.InventoryItem{}
	}
	if err := s.Put(ns, "inventory", inv, src); err != nil {
		return err
	}

	cart := cartDoc{Items: c.Cart}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return s.Put(ns, "cart", cart, src)
}

// ReadCustomer reassembles the aggregate from its fragments. The profile
// fragment is required; wallet, inventory and cart are optional and fall
// back to empty defaults when absent or corrupt.
func ReadCustomer(s Store, id string) (*models.Customer, bool) {
	ns := customerNS(id)

	var profile profileDoc
	if !s.Get(ns, "profile", &profile) {
		return nil, false
	}

	c := &models.Customer{
		CustomerID:     profile.CustomerID,
		MemberID:       profile.MemberID,
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		NickName:       profile.NickName,
		Status:         profile.Status,
		MembershipTier: profile.MembershipTier,
		LifecycleStage: profile.LifecycleStage,
		JoinDate:       profile.JoinDate,
		Email:          profile.Email,
		PhonePrimary:   profile.PhonePrimary,
		FacebookID:     profile.FacebookID,
		FacebookName:   profile.FacebookName,
		LeadChannel:    profile.LeadChannel,
		Agent:          profile.Agent,
		Intelligence:   profile.Intelligence,
		ConversationID: profile.ConversationID,
	}

	var wallet models.Wallet
	if s.Get(ns, "wallet", &wallet) {
		c.Wallet = wallet
	}

	var inv inventoryDoc
	if s.Get(ns, "inventory", &inv) && inv.Items != nil {
		c.Inventory = inv.Items
	}

	var cart cartDoc
	if s.Get(ns, "cart", &cart) && cart.Items != nil {
		c.Cart = cart.Items
	}

	return c, true
}

// ListCustomers reassembles every cached customer aggregate. Entries
// whose profile fragment is missing or unreadable are skipped.
func ListCustomers(s Store) []models.Customer {
	var out []models.Customer
	for _, id := range s.Subkinds(customerKind) {
		c, ok := ReadCustomer(s, id)
		if !ok {
			continue
		}
		out = append(out, *c)
	}
	return out
}
