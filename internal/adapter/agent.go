package adapter

import (
	"regexp"
	"strings"

	"github.com/vinsight/crm/internal/models"
)

// assignmentPatterns match the system notices dropped into a
// conversation when an agent is assigned. The first capture group is the
// agent name. Thai variants come from the page inbox automation.
var assignmentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`กำหนดการสนทนานี้ให้กับ (.*)$`),
	regexp.MustCompile(`ระบบมอบหมายแชทนี้ให้กับ (.*) ผ่านระบบอัตโนมัติ`),
	regexp.MustCompile(`assigned this conversation to (.*)$`),
	regexp.MustCompile(`assigned this chat to (.*)$`),
}

// ResolveAgentFromMessages scans a conversation, newest message first,
// for an assignment notice and returns the agent name, or "" when none
// is found.
func ResolveAgentFromMessages(msgs []models.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		for _, p := range assignmentPatterns {
			m := p.FindStringSubmatch(msgs[i].Content)
			if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return ""
}

// withAgent fills in the customer's agent field: an explicit assignment
// wins, then the intelligence blob's agent hint, then "Unassigned".
func withAgent(c *models.Customer) *models.Customer {
	if c == nil {
		return nil
	}
	if c.Agent != "" {
		return c
	}
	if hint, ok := c.Intelligence["agent"].(string); ok && hint != "" {
		c.Agent = hint
		return c
	}
	c.Agent = "Unassigned"
	return c
}
