package models

import "time"

// Conversation ties a message thread to a customer and carries the ad
// attribution metadata present when the thread was opened from an ad.
type Conversation struct {
	ConversationID string     `json:"conversationId"`
	CustomerID     string     `json:"customerId,omitempty"`
	ParticipantID  string     `json:"participantId,omitempty"`
	Channel        string     `json:"channel,omitempty"`
	AssignedAgent  string     `json:"assignedAgent,omitempty"`
	AdID           string     `json:"adId,omitempty"`
	CampaignID     string     `json:"campaignId,omitempty"`
	LastMessageAt  *time.Time `json:"lastMessageAt,omitempty"`
}

// Message is one chat message. SessionID is assigned once by the
// segmentation engine and never changes on re-ingestion.
type Message struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	SessionID      string    `json:"sessionId,omitempty"`
	FromID         string    `json:"fromId,omitempty"`
	FromName       string    `json:"fromName,omitempty"`
	Content        string    `json:"content,omitempty"`
	AdID           string    `json:"adId,omitempty"`
	HasAttachment  bool      `json:"hasAttachment,omitempty"`
	AttachmentURL  string    `json:"attachmentUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RawMessage is a message as delivered by an inbound message source,
// before segmentation and persistence.
type RawMessage struct {
	ID            string    `json:"id"`
	FromID        string    `json:"from"`
	FromName      string    `json:"fromName,omitempty"`
	Content       string    `json:"content,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	AttachmentURL string    `json:"attachmentUrl,omitempty"`
}
