// Package source fetches inbound chat messages from the page inbox.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vinsight/crm/internal/models"
)

const (
	graphBase    = "https://graph.facebook.com/v19.0"
	messageLimit = 50
)

// Source delivers the raw message batch for one conversation, newest
// first, the way the page inbox returns it.
type Source interface {
	Messages(ctx context.Context, conversationID string) ([]models.RawMessage, error)
}

// GraphClient reads conversations from the Facebook Graph API.
type GraphClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewGraphClient creates a page inbox client authorized by a page
// access token.
func NewGraphClient(token string) *GraphClient {
	return &GraphClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    graphBase,
		token:      token,
	}
}

type graphMessage struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	CreatedTime string `json:"created_time"`
	From        struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"from"`
	Attachments struct {
		Data []struct {
			FileURL   string `json:"file_url"`
			ImageData struct {
				URL string `json:"url"`
			} `json:"image_data"`
		} `json:"data"`
	} `json:"attachments"`
}

type graphResponse struct {
	Data  []graphMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Messages fetches the latest batch for a conversation. Thread IDs may
// carry the inbox's "t_" prefix; it is stripped before the call.
func (c *GraphClient) Messages(ctx context.Context, conversationID string) ([]models.RawMessage, error) {
	if c.token == "" {
		return nil, fmt.Errorf("source: page access token not configured")
	}

	id := strings.TrimPrefix(conversationID, "t_")
	url := fmt.Sprintf(
		"%s/%s/messages?fields=id,message,from,created_time,attachments{file_url,image_data}&limit=%d&access_token=%s",
		c.baseURL, id, messageLimit, c.token,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("source: decoding graph response: %w", err)
	}
	if body.Error != nil {
		return nil, fmt.Errorf("source: graph error %d: %s", body.Error.Code, body.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source: graph status %d", resp.StatusCode)
	}

	out := make([]models.RawMessage, 0, len(body.Data))
	for _, m := range body.Data {
		created, err := parseGraphTime(m.CreatedTime)
		if err != nil {
			continue
		}
		raw := models.RawMessage{
			ID:        m.ID,
			FromID:    m.From.ID,
			FromName:  m.From.Name,
			Content:   m.Message,
			CreatedAt: created,
		}
		if len(m.Attachments.Data) > 0 {
			a := m.Attachments.Data[0]
			if a.ImageData.URL != "" {
				raw.AttachmentURL = a.ImageData.URL
			} else {
				raw.AttachmentURL = a.FileURL
			}
		}
		out = append(out, raw)
	}
	return out, nil
}

// parseGraphTime handles both RFC 3339 and the graph API's compact
// offset form (no colon in the zone).
func parseGraphTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05-0700", s)
}
