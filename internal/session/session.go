// Package session partitions a conversation's message stream into
// attribution-coherent sessions. A session ends when the conversation
// goes quiet for more than 30 minutes, or when a new ad attribution
// appears mid-conversation; either boundary starts a fresh session so
// revenue reports never merge two marketing-driven inquiries.
package session

import (
	"sort"
	"time"

	"github.com/vinsight/crm/internal/models"
)

// Gap is the idle window after which a new message opens a new session.
const Gap = 30 * time.Minute

// ID derives a session identifier from the participant and the session's
// first message time. It is deterministic so re-running the pass over an
// already-processed prefix reproduces the same identifiers.
func ID(participantID string, firstMessage time.Time) string {
	t := firstMessage.UTC()
	return "session_" + t.Format("20060102") + "_" + t.Format("150405") + "_" + participantID
}

// State carries the segmentation cursor between passes, seeded from the
// most recently persisted message so new batches continue the open
// session instead of starting over.
type State struct {
	SessionID string
	LastTime  time.Time
	LastAdID  string
}

// Resume builds the pass state from the last persisted message, if any.
func Resume(last *models.Message) State {
	if last == nil {
		return State{}
	}
	return State{
		SessionID: last.SessionID,
		LastTime:  last.CreatedAt,
		LastAdID:  last.AdID,
	}
}

// Assign walks msgs in chronological order and fills in SessionID on
// every message that does not already carry one. Input should be sorted
// by CreatedAt; Assign sorts defensively since unsorted input must not
// crash, but session boundaries are only well-defined for sorted input.
//
// A message that already has a SessionID keeps it and re-seeds the
// cursor, which makes re-ingestion of an already-processed batch a
// no-op.
func Assign(participantID string, st State, msgs []models.Message) []models.Message {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})

	for i := range msgs {
		m := &msgs[i]

		if m.SessionID != "" {
			st.SessionID = m.SessionID
			st.LastTime = m.CreatedAt
			st.LastAdID = m.AdID
			continue
		}

		timedOut := !st.LastTime.IsZero() && m.CreatedAt.Sub(st.LastTime) > Gap
		adShift := st.LastAdID != "" && m.AdID != st.LastAdID

		if st.SessionID == "" || timedOut || adShift {
			st.SessionID = ID(participantID, m.CreatedAt)
		}

		m.SessionID = st.SessionID
		st.LastTime = m.CreatedAt
		st.LastAdID = m.AdID
	}

	return msgs
}
