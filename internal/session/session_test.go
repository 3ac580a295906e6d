package session

import (
	"testing"
	"time"

	"github.com/vinsight/crm/internal/models"
)

func msg(id string, at time.Time, adID string) models.Message {
	return models.Message{MessageID: id, CreatedAt: at, AdID: adID}
}

func TestIDIsDeterministic(t *testing.T) {
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	a := ID("fb_9001", at)
	b := ID("fb_9001", at)
	if a != b {
		t.Fatalf("same inputs produced %q and %q", a, b)
	}
	if a != "session_20260820_100000_fb_9001" {
		t.Fatalf("unexpected format: %q", a)
	}
}

func TestIDUsesUTC(t *testing.T) {
	bkk := time.FixedZone("ICT", 7*3600)
	at := time.Date(2026, 8, 20, 17, 0, 0, 0, bkk) // 10:00 UTC
	if got := ID("p", at); got != "session_20260820_100000_p" {
		t.Fatalf("expected UTC-normalized ID, got %q", got)
	}
}

func TestGapStartsNewSession(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		msg("m1", base, ""),
		msg("m2", base.Add(5*time.Minute), ""),
		msg("m3", base.Add(50*time.Minute), ""), // 45 min after m2
	}

	out := Assign("p1", State{}, msgs)

	if out[0].SessionID == "" {
		t.Fatal("first message must open a session")
	}
	if out[1].SessionID != out[0].SessionID {
		t.Fatalf("m2 should share m1's session: %q vs %q", out[1].SessionID, out[0].SessionID)
	}
	if out[2].SessionID == out[0].SessionID {
		t.Fatal("m3 is past the idle gap and needs a new session")
	}
	if out[2].SessionID != ID("p1", out[2].CreatedAt) {
		t.Fatalf("new session ID not derived from first message: %q", out[2].SessionID)
	}
}

func TestExactGapDoesNotSplit(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		msg("m1", base, ""),
		msg("m2", base.Add(Gap), ""), // exactly 30 minutes
	}

	out := Assign("p1", State{}, msgs)
	if out[1].SessionID != out[0].SessionID {
		t.Fatal("a gap of exactly 30 minutes stays in the same session")
	}
}

func TestAdShiftStartsNewSession(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		msg("m1", base, "AD-1"),
		msg("m2", base.Add(10*time.Minute), "AD-1"),
		msg("m3", base.Add(12*time.Minute), "AD-2"), // attribution shift
	}

	out := Assign("p1", State{}, msgs)
	if out[1].SessionID != out[0].SessionID {
		t.Fatal("same ad keeps the session")
	}
	if out[2].SessionID == out[1].SessionID {
		t.Fatal("ad shift inside the idle window must still split")
	}
}

func TestNoAdThenAdDoesNotSplit(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		msg("m1", base, ""),
		msg("m2", base.Add(time.Minute), "AD-1"),
	}

	// Attribution appearing where there was none is not a shift.
	out := Assign("p1", State{}, msgs)
	if out[1].SessionID != out[0].SessionID {
		t.Fatal("gaining attribution must not split the session")
	}
}

func TestAssignPreservesExistingSessionIDs(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	first := Assign("p1", State{}, []models.Message{
		msg("m1", base, ""),
		msg("m2", base.Add(5*time.Minute), ""),
	})

	// Re-ingest the same batch plus one new message within the window.
	again := append(first, msg("m3", base.Add(10*time.Minute), ""))
	out := Assign("p1", State{}, again)

	if out[0].SessionID != first[0].SessionID || out[1].SessionID != first[1].SessionID {
		t.Fatal("re-ingestion moved messages to a different session")
	}
	if out[2].SessionID != first[0].SessionID {
		t.Fatalf("new message should continue the open session, got %q", out[2].SessionID)
	}
}

func TestResumeContinuesAcrossBatches(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	first := Assign("p1", State{}, []models.Message{msg("m1", base, "AD-1")})

	st := Resume(&first[0])
	second := Assign("p1", st, []models.Message{msg("m2", base.Add(5*time.Minute), "AD-1")})
	if second[0].SessionID != first[0].SessionID {
		t.Fatal("new batch within the window should continue the session")
	}

	third := Assign("p1", Resume(&second[0]), []models.Message{msg("m3", base.Add(2*time.Hour), "AD-1")})
	if third[0].SessionID == first[0].SessionID {
		t.Fatal("batch after the idle gap should open a new session")
	}
}

func TestAssignSortsInput(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		msg("m2", base.Add(5*time.Minute), ""),
		msg("m1", base, ""),
	}

	out := Assign("p1", State{}, msgs)
	if out[0].MessageID != "m1" {
		t.Fatalf("expected chronological order, got %q first", out[0].MessageID)
	}
	if out[0].SessionID != ID("p1", base) {
		t.Fatalf("session must be anchored at the earliest message, got %q", out[0].SessionID)
	}
}
