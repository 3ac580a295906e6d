package adapter

import (
	"testing"

	"github.com/vinsight/crm/internal/models"
)

func TestResolveAgentFromMessages(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"english conversation", "Admin assigned this conversation to Ice", "Ice"},
		{"english chat", "Admin assigned this chat to Nok", "Nok"},
		{"thai manual", "กำหนดการสนทนานี้ให้กับ Bank", "Bank"},
		{"thai automatic", "ระบบมอบหมายแชทนี้ให้กับ Ploy ผ่านระบบอัตโนมัติ", "Ploy"},
		{"plain message", "hello, is this still available?", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ResolveAgentFromMessages([]models.Message{{Content: c.content}})
			if got != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestResolveAgentPrefersNewestNotice(t *testing.T) {
	msgs := []models.Message{
		{Content: "Admin assigned this conversation to Ice"},
		{Content: "thanks!"},
		{Content: "Admin assigned this conversation to Nok"},
	}
	if got := ResolveAgentFromMessages(msgs); got != "Nok" {
		t.Fatalf("expected latest assignment to win, got %q", got)
	}
}

func TestWithAgent(t *testing.T) {
	if withAgent(nil) != nil {
		t.Fatal("nil customer must stay nil")
	}

	c := &models.Customer{Agent: "Ice"}
	if withAgent(c).Agent != "Ice" {
		t.Fatal("explicit assignment must win")
	}

	c = &models.Customer{Intelligence: map[string]any{"agent": "Nok"}}
	if withAgent(c).Agent != "Nok" {
		t.Fatal("intelligence hint should fill an empty agent")
	}

	c = &models.Customer{}
	if withAgent(c).Agent != "Unassigned" {
		t.Fatalf("expected Unassigned default, got %q", c.Agent)
	}
}
