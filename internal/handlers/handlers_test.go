package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vinsight/crm/internal/adapter"
	"github.com/vinsight/crm/internal/api"
	"github.com/vinsight/crm/internal/cache"
	"github.com/vinsight/crm/internal/handlers"
	"github.com/vinsight/crm/internal/models"
	"github.com/vinsight/crm/internal/session"
	"github.com/vinsight/crm/internal/source"
	"github.com/vinsight/crm/internal/store"
	"github.com/vinsight/crm/internal/syncq"
)

// authPrimary backs the login tests; everything else runs cache-only.
type authPrimary struct {
	store.Primary

	employee models.Employee
}

func (p *authPrimary) Ping(ctx context.Context) error { return nil }

func (p *authPrimary) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	if p.employee.Email == email {
		e := p.employee
		return &e, nil
	}
	return nil, nil
}

func (p *authPrimary) AppendAuditLog(ctx context.Context, e models.AuditEntry) error { return nil }

// newCacheOnlyServer wires a router over a cache-only adapter with an
// inline emitter, which is how the service runs with no database and no
// broker configured.
func newCacheOnlyServer(t *testing.T) (*httptest.Server, *cache.FileStore) {
	t.Helper()
	fc, err := cache.NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	emitter := syncq.NewEmitter(nil, fc, zerolog.Nop())
	data := adapter.New(adapter.ModeCacheOnly, nil, fc, emitter, zerolog.Nop())
	h := handlers.NewHandler(data, emitter, nil, time.Hour, zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(zerolog.Nop(), h))
	t.Cleanup(srv.Close)
	return srv, fc
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatal(err)
	}
}

func TestHealthDegradedWithoutPrimary(t *testing.T) {
	srv, _ := newCacheOnlyServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("degraded service must still answer 200, got %d", resp.StatusCode)
	}

	var body handlers.HealthResponse
	decodeBody(t, resp, &body)
	if body.Status != "degraded" {
		t.Fatalf("expected degraded status, got %q", body.Status)
	}
	if body.Checks["primary"].Status != "fail" || body.Checks["cache"].Status != "pass" {
		t.Fatalf("unexpected checks: %+v", body.Checks)
	}
}

func TestCustomerCreateAndFetch(t *testing.T) {
	srv, _ := newCacheOnlyServer(t)

	payload := `{"firstName":"Napat","membershipTier":"GOLD"}`
	resp, err := http.Post(srv.URL+"/customers", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for a new customer, got %d", resp.StatusCode)
	}

	var created models.Customer
	decodeBody(t, resp, &created)
	if !strings.HasPrefix(created.CustomerID, "CUS-") {
		t.Fatalf("expected generated CUS- id, got %q", created.CustomerID)
	}

	resp, err = http.Get(srv.URL + "/customers/" + created.CustomerID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got models.Customer
	decodeBody(t, resp, &got)
	if got.FirstName != "Napat" || got.MembershipTier != "GOLD" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestCustomerUpdateReturns200(t *testing.T) {
	srv, _ := newCacheOnlyServer(t)

	body, _ := json.Marshal(models.Customer{CustomerID: "CUS-FIXED", FirstName: "Mali"})
	resp, err := http.Post(srv.URL+"/customers", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert with an existing id is an update, got %d", resp.StatusCode)
	}
}

func TestCustomerNotFound(t *testing.T) {
	srv, _ := newCacheOnlyServer(t)

	resp, err := http.Get(srv.URL + "/customers/CUS-MISSING")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListCustomersServesIndexProjection(t *testing.T) {
	srv, _ := newCacheOnlyServer(t)

	payload := `{"customerId":"CUS-1","firstName":"Korn"}`
	resp, err := http.Post(srv.URL+"/customers", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/customers")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Total int                        `json:"total"`
		Data  []models.ProjectedCustomer `json:"data"`
	}
	decodeBody(t, resp, &body)
	if body.Total != 1 || len(body.Data) != 1 {
		t.Fatalf("expected 1 indexed customer, got %+v", body)
	}
	if body.Data[0].Name != "Korn" {
		t.Fatalf("projection wrong: %+v", body.Data[0])
	}
}

func TestDailyRollupEndpoint(t *testing.T) {
	srv, fc := newCacheOnlyServer(t)

	resp, err := http.Get(srv.URL + "/marketing/daily/not-a-date")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed date, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/marketing/daily/2026-08-20")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unrecorded date, got %d", resp.StatusCode)
	}

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	if _, err := cache.RebuildMarketing(fc, []models.AdDailyMetric{
		{AdID: "AD-1", Date: day, Spend: 100, Revenue: 200, Leads: 2},
	}); err != nil {
		t.Fatal(err)
	}

	resp, err = http.Get(srv.URL + "/marketing/daily/2026-08-20")
	if err != nil {
		t.Fatal(err)
	}
	var rollup cache.DailyRollup
	decodeBody(t, resp, &rollup)
	if rollup.Spend != 100 || rollup.ROAS != 2 {
		t.Fatalf("unexpected rollup: %+v", rollup)
	}
}

func TestAnalyticsSummaryCacheOnly(t *testing.T) {
	srv, _ := newCacheOnlyServer(t)

	payload := `{"customerId":"CUS-1","firstName":"Korn"}`
	resp, err := http.Post(srv.URL+"/customers", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/analytics/summary")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var summary models.AnalyticsSummary
	decodeBody(t, resp, &summary)
	if summary.Customers.Total != 1 {
		t.Fatalf("expected 1 customer counted, got %+v", summary.Customers)
	}
}

func TestLoginAgainstPrimary(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	primary := &authPrimary{employee: models.Employee{
		EmployeeID:   "EMP-001",
		Email:        "admin@vinsight.local",
		PasswordHash: string(hash),
	}}

	fc, err := cache.NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	emitter := syncq.NewEmitter(nil, fc, zerolog.Nop())
	data := adapter.New(adapter.ModePrimary, primary, fc, emitter, zerolog.Nop())
	h := handlers.NewHandler(data, emitter, nil, time.Hour, zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(zerolog.Nop(), h))
	defer srv.Close()

	login := func(email, password string) int {
		body, _ := json.Marshal(handlers.LoginRequest{Email: email, Password: password})
		resp, err := http.Post(srv.URL+"/login", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if got := login("ADMIN@vinsight.local", "s3cret"); got != http.StatusOK {
		t.Fatalf("expected 200 with case-folded email, got %d", got)
	}
	// Unknown account and bad password are indistinguishable.
	if got := login("nobody@vinsight.local", "s3cret"); got != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", got)
	}
	if got := login("admin@vinsight.local", "wrong"); got != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", got)
	}
}

func TestLoginCacheOnlyFailsClosed(t *testing.T) {
	srv, fc := newCacheOnlyServer(t)

	// Cached employee records never carry password hashes, so login
	// cannot succeed without the primary store.
	if err := fc.Put("employee", "EMP-001", models.Employee{
		EmployeeID: "EMP-001",
		Email:      "admin@vinsight.local",
	}, cache.SourcePrimary); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(handlers.LoginRequest{Email: "admin@vinsight.local", Password: "anything"})
	resp, err := http.Post(srv.URL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 in cache-only mode, got %d", resp.StatusCode)
	}
}

// fakeSource stands in for the page inbox.
type fakeSource struct {
	msgs []models.RawMessage
	err  error
}

func (s *fakeSource) Messages(ctx context.Context, conversationID string) ([]models.RawMessage, error) {
	return s.msgs, s.err
}

// chatPrimary backs the chat ingestion tests: one customer, one
// conversation, recorded message upserts.
type chatPrimary struct {
	store.Primary

	customer *models.Customer
	conv     *models.Conversation
	last     *models.Message
	upserted []models.Message
	touched  time.Time
}

func (p *chatPrimary) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return p.customer, nil
}

func (p *chatPrimary) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return p.conv, nil
}

func (p *chatPrimary) LastMessage(ctx context.Context, id string) (*models.Message, error) {
	return p.last, nil
}

func (p *chatPrimary) UpsertMessage(ctx context.Context, m *models.Message) error {
	p.upserted = append(p.upserted, *m)
	return nil
}

func (p *chatPrimary) TouchConversation(ctx context.Context, id string, at time.Time) error {
	p.touched = at
	return nil
}

func newChatServer(t *testing.T, primary store.Primary, src source.Source) (*httptest.Server, *cache.FileStore) {
	t.Helper()
	fc, err := cache.NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	emitter := syncq.NewEmitter(nil, fc, zerolog.Nop())
	mode := adapter.ModePrimary
	if primary == nil {
		mode = adapter.ModeCacheOnly
	}
	data := adapter.New(mode, primary, fc, emitter, zerolog.Nop())
	h := handlers.NewHandler(data, emitter, src, time.Hour, zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(zerolog.Nop(), h))
	t.Cleanup(srv.Close)
	return srv, fc
}

// chatDoc mirrors the cached conversation fragment for assertions.
type chatDoc struct {
	ConversationID string           `json:"conversationId"`
	Agent          string           `json:"agent"`
	Messages       []models.Message `json:"messages"`
}

func rawMsg(id string, at time.Time, content string) models.RawMessage {
	return models.RawMessage{ID: id, FromID: "fb_9001", Content: content, CreatedAt: at}
}

func TestSyncChatAssignsSessionsAndRefreshesCache(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	primary := &chatPrimary{
		customer: &models.Customer{CustomerID: "CUS-1", ConversationID: "t_1001", FacebookID: "fb_9001"},
		conv:     &models.Conversation{ConversationID: "t_1001", AdID: "AD-7"},
	}
	src := &fakeSource{msgs: []models.RawMessage{
		rawMsg("m1", base, "hello"),
		rawMsg("m2", base.Add(5*time.Minute), "Admin assigned this conversation to Nok"),
		rawMsg("m3", base.Add(50*time.Minute), "still there?"),
	}}
	srv, fc := newChatServer(t, primary, src)

	resp, err := http.Post(srv.URL+"/customers/CUS-1/chat/sync", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusOK || !body.Success || body.Count != 3 {
		t.Fatalf("unexpected response: status %d, body %+v", resp.StatusCode, body)
	}

	if len(primary.upserted) != 3 {
		t.Fatalf("expected 3 upserted messages, got %d", len(primary.upserted))
	}
	s1 := session.ID("fb_9001", base)
	s2 := session.ID("fb_9001", base.Add(50*time.Minute))
	got := []string{primary.upserted[0].SessionID, primary.upserted[1].SessionID, primary.upserted[2].SessionID}
	if got[0] != s1 || got[1] != s1 || got[2] != s2 {
		t.Fatalf("session assignment wrong: %v", got)
	}
	for _, m := range primary.upserted {
		if m.AdID != "AD-7" {
			t.Fatalf("message did not inherit the conversation ad id: %+v", m)
		}
	}
	if !primary.touched.Equal(base.Add(50 * time.Minute)) {
		t.Fatalf("conversation not touched with the last message time: %v", primary.touched)
	}

	var doc chatDoc
	if !fc.Get("customer/CUS-1/chathistory", "conv_t_1001", &doc) {
		t.Fatal("chathistory fragment not written")
	}
	if len(doc.Messages) != 3 || doc.Messages[2].SessionID != s2 {
		t.Fatalf("cached fragment lost session assignments: %+v", doc.Messages)
	}
	// No agent on the conversation record, so the assignment notice in
	// the batch decides.
	if doc.Agent != "Nok" {
		t.Fatalf("expected agent resolved from messages, got %q", doc.Agent)
	}
}

func TestSyncChatContinuesPersistedSession(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	prev := session.ID("fb_9001", base)
	primary := &chatPrimary{
		customer: &models.Customer{CustomerID: "CUS-1", ConversationID: "t_1001", FacebookID: "fb_9001"},
		conv:     &models.Conversation{ConversationID: "t_1001"},
		last:     &models.Message{MessageID: "m0", SessionID: prev, CreatedAt: base},
	}
	src := &fakeSource{msgs: []models.RawMessage{rawMsg("m1", base.Add(10*time.Minute), "back again")}}
	srv, _ := newChatServer(t, primary, src)

	resp, err := http.Post(srv.URL+"/customers/CUS-1/chat/sync", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if len(primary.upserted) != 1 || primary.upserted[0].SessionID != prev {
		t.Fatalf("new batch should continue the persisted session %q, got %+v", prev, primary.upserted)
	}
}

func TestSyncChatResumesFromCacheWithoutPrimary(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	prev := session.ID("fb_9001", base)
	src := &fakeSource{msgs: []models.RawMessage{rawMsg("m1", base.Add(10*time.Minute), "hello again")}}
	srv, fc := newChatServer(t, nil, src)

	c := &models.Customer{CustomerID: "CUS-1", ConversationID: "t_1001", FacebookID: "fb_9001"}
	if err := cache.WriteCustomer(fc, "CUS-1", c, cache.SourcePrimary); err != nil {
		t.Fatal(err)
	}
	seed := chatDoc{
		ConversationID: "t_1001",
		Messages:       []models.Message{{MessageID: "m0", SessionID: prev, CreatedAt: base}},
	}
	if err := fc.Put("customer/CUS-1/chathistory", "conv_t_1001", seed, cache.SourcePrimary); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(srv.URL+"/customers/CUS-1/chat/sync", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var doc chatDoc
	if !fc.Get("customer/CUS-1/chathistory", "conv_t_1001", &doc) {
		t.Fatal("chathistory fragment not rewritten")
	}
	if len(doc.Messages) != 1 || doc.Messages[0].SessionID != prev {
		t.Fatalf("cache-resumed batch should continue session %q, got %+v", prev, doc.Messages)
	}
}

func TestSyncChatSourceFailure(t *testing.T) {
	primary := &chatPrimary{
		customer: &models.Customer{CustomerID: "CUS-1", ConversationID: "t_1001"},
		conv:     &models.Conversation{ConversationID: "t_1001"},
	}
	src := &fakeSource{err: errors.New("graph timeout")}
	srv, _ := newChatServer(t, primary, src)

	resp, err := http.Post(srv.URL+"/customers/CUS-1/chat/sync", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 when the inbox is unreachable, got %d", resp.StatusCode)
	}
	if len(primary.upserted) != 0 {
		t.Fatal("nothing should be persisted when the fetch fails")
	}
}

func TestRebuildAcceptedCacheOnly(t *testing.T) {
	srv, fc := newCacheOnlyServer(t)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/admin/rebuild", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	// With no broker the rebuilds run inline, so the index artifact
	// exists as soon as the request returns.
	if _, ok := cache.ReadIndex(fc); !ok {
		t.Fatal("rebuild did not produce the index artifact")
	}
}
