package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinsight/crm/internal/adapter"
	"github.com/vinsight/crm/internal/metrics"
	"github.com/vinsight/crm/internal/models"
	"github.com/vinsight/crm/internal/session"
)

const chatHistoryLimit = 50

// chatHistoryDoc is the cached conversation fragment stored under
// customer/{id}/chathistory/conv_{conversationId}.json.
type chatHistoryDoc struct {
	ConversationID string           `json:"conversationId"`
	ParticipantID  string           `json:"participantId,omitempty"`
	Agent          string           `json:"agent,omitempty"`
	Messages       []models.Message `json:"messages"`
}

func chatHistoryKind(customerID string) string {
	return "customer/" + customerID + "/chathistory"
}

// GetChat handles GET /customers/{id}/chat. It serves persisted
// messages from the primary store, falling back to the cached
// conversation fragment.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.data.Customer(r.Context(), id)
	if err != nil || c == nil {
		h.Error(w, http.StatusNotFound, "customer not found")
		return
	}
	if c.ConversationID == "" {
		h.JSON(w, http.StatusOK, map[string]any{"data": []models.Message{}})
		return
	}

	if primary := h.data.Primary(); primary != nil {
		msgs, err := primary.ListMessages(r.Context(), c.ConversationID, chatHistoryLimit)
		if err == nil {
			h.JSON(w, http.StatusOK, map[string]any{"data": msgs, "source": "primary"})
			return
		}
		h.logger.Warn().Err(err).Str("conversation_id", c.ConversationID).Msg("message read failed, falling back to cache")
	}

	var doc chatHistoryDoc
	if h.data.Cache().Get(chatHistoryKind(id), "conv_"+c.ConversationID, &doc) {
		h.JSON(w, http.StatusOK, map[string]any{"data": doc.Messages, "source": "cache"})
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"data": []models.Message{}})
}

// SyncChat handles POST /customers/{id}/chat/sync. It pulls the latest
// message batch from the inbox source, assigns session identifiers,
// persists the batch, and refreshes the cached conversation fragment.
func (h *Handler) SyncChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	c, err := h.data.Customer(ctx, id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load customer")
		return
	}
	if c == nil {
		h.Error(w, http.StatusNotFound, "customer not found")
		return
	}
	if c.ConversationID == "" {
		h.Error(w, http.StatusBadRequest, "customer has no conversation")
		return
	}

	raw, err := h.src.Messages(ctx, c.ConversationID)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", c.ConversationID).Msg("inbox fetch failed")
		h.Error(w, http.StatusBadGateway, "message source unavailable")
		return
	}

	participantID := c.FacebookID
	if participantID == "" {
		participantID = c.ConversationID
	}

	// Ad attribution rides on the conversation record; every message in
	// the batch inherits it for boundary detection.
	adID := ""
	assignedAgent := ""
	primary := h.data.Primary()
	if primary != nil {
		if conv, err := primary.GetConversation(ctx, c.ConversationID); err == nil && conv != nil {
			adID = conv.AdID
			assignedAgent = conv.AssignedAgent
		}
	}

	msgs := make([]models.Message, 0, len(raw))
	for _, m := range raw {
		msgs = append(msgs, models.Message{
			MessageID:      m.ID,
			ConversationID: c.ConversationID,
			FromID:         m.FromID,
			FromName:       m.FromName,
			Content:        m.Content,
			AdID:           adID,
			HasAttachment:  m.AttachmentURL != "",
			AttachmentURL:  m.AttachmentURL,
			CreatedAt:      m.CreatedAt,
		})
	}

	st := h.resumeState(ctx, id, c.ConversationID)
	before := st.SessionID
	msgs = session.Assign(participantID, st, msgs)
	countNewSessions(before, msgs)

	if primary != nil {
		for i := range msgs {
			if err := primary.UpsertMessage(ctx, &msgs[i]); err != nil {
				h.logger.Error().Err(err).Str("message_id", msgs[i].MessageID).Msg("message upsert failed")
				h.Error(w, http.StatusInternalServerError, "failed to persist messages")
				return
			}
		}
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1].CreatedAt
			if err := primary.TouchConversation(ctx, c.ConversationID, last); err != nil {
				h.logger.Warn().Err(err).Str("conversation_id", c.ConversationID).Msg("conversation touch failed")
			}
		}
	}

	if assignedAgent == "" {
		assignedAgent = adapter.ResolveAgentFromMessages(msgs)
	}

	h.emitter.EmitSync(ctx, chatHistoryKind(id), "conv_"+c.ConversationID, chatHistoryDoc{
		ConversationID: c.ConversationID,
		ParticipantID:  participantID,
		Agent:          assignedAgent,
		Messages:       msgs,
	})

	h.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(msgs),
		"data":    msgs,
	})
}

// resumeState seeds the segmentation cursor from the most recently
// persisted message, falling back to the cached conversation fragment
// when the primary store is unavailable.
func (h *Handler) resumeState(ctx context.Context, customerID, conversationID string) session.State {
	if primary := h.data.Primary(); primary != nil {
		last, err := primary.LastMessage(ctx, conversationID)
		if err == nil {
			return session.Resume(last)
		}
		h.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("last message read failed, resuming from cache")
	}

	var doc chatHistoryDoc
	if !h.data.Cache().Get(chatHistoryKind(customerID), "conv_"+conversationID, &doc) {
		return session.State{}
	}

	var last *models.Message
	for i := range doc.Messages {
		m := &doc.Messages[i]
		if m.SessionID == "" {
			continue
		}
		if last == nil || m.CreatedAt.After(last.CreatedAt) {
			last = m
		}
	}
	return session.Resume(last)
}

// countNewSessions bumps the sessions-started metric for every distinct
// session identifier in the batch that did not exist before the pass.
func countNewSessions(previous string, msgs []models.Message) {
	seen := map[string]bool{previous: true}
	for i := range msgs {
		sid := msgs[i].SessionID
		if sid != "" && !seen[sid] {
			seen[sid] = true
			metrics.SessionsStarted.Inc()
		}
	}
}
