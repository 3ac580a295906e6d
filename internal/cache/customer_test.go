package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vinsight/crm/internal/models"
)

func TestCustomerFragmentRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := &models.Customer{
		CustomerID:     "CUS-1",
		FirstName:      "Napat",
		NickName:       "Beam",
		Status:         "Active",
		MembershipTier: "GOLD",
		ConversationID: "t_1001",
		Wallet:         models.Wallet{Balance: 1500, Points: 320, Currency: "THB"},
		Inventory: []models.InventoryItem{
			{ProductID: "PRD-101", Name: "Starter Course", Quantity: 1},
		},
		Cart: []models.CartItem{
			{ProductID: "PRD-102", Name: "Pro Course", Quantity: 1, UnitPrice: 12900},
		},
	}
	if err := WriteCustomer(s, in.CustomerID, in, SourcePrimary); err != nil {
		t.Fatal(err)
	}

	// Four fragment files under the customer's namespace.
	for _, frag := range []string{"profile", "wallet", "inventory", "cart"} {
		p := filepath.Join(s.Root(), "customer", "CUS-1", frag+".json")
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing fragment %s: %v", frag, err)
		}
	}

	out, ok := ReadCustomer(s, "CUS-1")
	if !ok {
		t.Fatal("expected customer to be readable")
	}
	if out.FirstName != "Napat" || out.MembershipTier != "GOLD" {
		t.Fatalf("profile mismatch: %+v", out)
	}
	if out.Wallet.Balance != 1500 || out.Wallet.Points != 320 {
		t.Fatalf("wallet mismatch: %+v", out.Wallet)
	}
	if len(out.Inventory) != 1 || out.Inventory[0].ProductID != "PRD-101" {
		t.Fatalf("inventory mismatch: %+v", out.Inventory)
	}
	if len(out.Cart) != 1 || out.Cart[0].UnitPrice != 12900 {
		t.Fatalf("cart mismatch: %+v", out.Cart)
	}
}

func TestReadCustomerRequiresProfile(t *testing.T) {
	s := newTestStore(t)

	// Wallet alone is not enough.
	if err := s.Put("customer/CUS-1", "wallet", models.Wallet{Balance: 10, Currency: "THB"}, SourcePrimary); err != nil {
		t.Fatal(err)
	}
	if _, ok := ReadCustomer(s, "CUS-1"); ok {
		t.Fatal("customer without profile fragment must be absent")
	}
}

func TestReadCustomerToleratesMissingFragments(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("customer/CUS-1", "profile", map[string]string{"customerId": "CUS-1", "firstName": "Mali"}, SourcePrimary); err != nil {
		t.Fatal(err)
	}

	c, ok := ReadCustomer(s, "CUS-1")
	if !ok {
		t.Fatal("profile alone should be enough")
	}
	if c.FirstName != "Mali" {
		t.Fatalf("profile mismatch: %+v", c)
	}
	if len(c.Inventory) != 0 || len(c.Cart) != 0 {
		t.Fatalf("expected empty defaults, got %+v", c)
	}
}

func TestReadCustomerToleratesCorruptFragment(t *testing.T) {
	s := newTestStore(t)

	in := &models.Customer{CustomerID: "CUS-1", FirstName: "Napat", Wallet: models.Wallet{Balance: 99, Currency: "THB"}}
	if err := WriteCustomer(s, in.CustomerID, in, SourcePrimary); err != nil {
		t.Fatal(err)
	}

	walletPath := filepath.Join(s.Root(), "customer", "CUS-1", "wallet.json")
	if err := os.WriteFile(walletPath, []byte("oops"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, ok := ReadCustomer(s, "CUS-1")
	if !ok {
		t.Fatal("corrupt wallet must not block the read")
	}
	if c.Wallet.Balance != 0 {
		t.Fatalf("corrupt wallet should fall back to zero value, got %+v", c.Wallet)
	}
}

func TestListCustomersSkipsProfilelessEntries(t *testing.T) {
	s := newTestStore(t)

	a := &models.Customer{CustomerID: "CUS-A"}
	if err := WriteCustomer(s, a.CustomerID, a, SourcePrimary); err != nil {
		t.Fatal(err)
	}
	// A directory without a profile fragment.
	if err := s.Put("customer/CUS-B", "wallet", models.Wallet{Currency: "THB"}, SourcePrimary); err != nil {
		t.Fatal(err)
	}

	got := ListCustomers(s)
	if len(got) != 1 || got[0].CustomerID != "CUS-A" {
		t.Fatalf("unexpected list: %+v", got)
	}
}
