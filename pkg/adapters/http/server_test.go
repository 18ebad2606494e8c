package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/adapters/memory"
	"github.com/livingtrust/livingtrust/pkg/advisor"
	"github.com/livingtrust/livingtrust/pkg/auth"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/gateway"
	"github.com/livingtrust/livingtrust/pkg/observability"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/livingtrust/livingtrust/pkg/runner"
	"github.com/livingtrust/livingtrust/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv    *httptest.Server
	trusts *memory.TrustRepository
	auth   *auth.Service
}

type fixtureOption func(*Config, *[]session.Option)

func withGateway(g ports.SubmissionGateway) fixtureOption {
	return func(_ *Config, opts *[]session.Option) {
		*opts = append(*opts, session.WithGateway(g))
	}
}

func withLimiter(l *RateLimiter) fixtureOption {
	return func(c *Config, _ *[]session.Option) { c.AILimiter = l }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	trusts := memory.NewTrustRepository()
	authSvc := auth.NewService(memory.NewUserRepository(), "test-secret")
	streams := NewStreamManager(nil)

	cfg := Config{
		Trusts:    trusts,
		Documents: memory.NewDocumentRepository(),
		Auth:      authSvc,
		Streams:   streams,
		Metrics:   observability.NewMetrics(),
	}
	sessOpts := []session.Option{
		session.WithGateway(gateway.NewLocal(trusts)),
		session.WithObserver(streams.Observe),
	}
	for _, opt := range opts {
		opt(&cfg, &sessOpts)
	}
	cfg.Sessions = session.NewManager(memory.NewStore(), sessOpts...)

	srv := httptest.NewServer(NewHandler(cfg))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, trusts: trusts, auth: authSvc}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent && !strings.HasPrefix(path, "/metrics") {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "secret123", "name": "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["token"].(string)
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, body = f.do(t, http.MethodGet, "/info", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dev", body["version"])
	assert.NotEqual(t, "unknown", body["api_version"])

	resp, body = f.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Route not found", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/health", "", nil)

	resp, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "livingtrust_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "jane@example.com")

	resp, body := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "JANE@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists", body["error"])

	resp, body = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "jane@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])

	resp, body = f.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "jane@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")

	resp, body = f.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "No token provided", body["error"])

	resp, body = f.do(t, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", body["error"])

	resp, body = f.do(t, http.MethodPut, "/api/users/profile", token, map[string]string{"name": "Jane Doe"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Jane Doe", body["user"].(map[string]any)["name"])

	resp, _ = f.do(t, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTrustCRUD(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "owner@example.com")

	resp, body := f.do(t, http.MethodPost, "/api/trusts", token, map[string]string{
		"trustName": "Smith Family Trust", "grantorName": "John Smith",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	created := body["trust"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "draft", created["status"])
	assert.Equal(t, "revocable", created["trustType"])

	resp, body = f.do(t, http.MethodPut, "/api/trusts/"+id, token, map[string]string{"status": "active", "notes": "n"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "active", body["trust"].(map[string]any)["status"])
	assert.Equal(t, "Smith Family Trust", body["trust"].(map[string]any)["trustName"])

	resp, _ = f.do(t, http.MethodPut, "/api/trusts/"+id, token, map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/api/trusts?status=active", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["trusts"], 1)

	other := f.register(t, "other@example.com")
	resp, body = f.do(t, http.MethodGet, "/api/trusts/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Trust not found", body["error"])

	resp, body = f.do(t, http.MethodGet, "/api/trusts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["trusts"], "anonymous callers do not see owned trusts")

	resp, _ = f.do(t, http.MethodDelete, "/api/trusts/"+id, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodDelete, "/api/trusts/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateTrustIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	post := func() string {
		req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/trusts", strings.NewReader(`{"trustName":"T"}`))
		require.NoError(t, err)
		req.Header.Set(domain.HeaderIdempotencyKey, "key-1")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body struct {
			Trust domain.Trust `json:"trust"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body.Trust.ID
	}
	assert.Equal(t, post(), post())

	all, err := f.trusts.List(context.Background(), domain.TrustFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateTrustIdempotencyKeyIsPerOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	post := func(token, name string) map[string]any {
		t.Helper()
		body := fmt.Sprintf(`{"trustName":%q,"beneficiaries":"heirs of %s"}`, name, name)
		req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/trusts", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set(domain.HeaderIdempotencyKey, "shared-key")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var out struct {
			Trust map[string]any `json:"trust"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out.Trust
	}

	first := post(alice, "Alice Trust")
	again := post(alice, "Alice Trust")
	assert.Equal(t, first["id"], again["id"])

	bobs := post(bob, "Bob Trust")
	assert.NotEqual(t, first["id"], bobs["id"])
	assert.Equal(t, "Bob Trust", bobs["trustName"])
	assert.Equal(t, "heirs of Bob Trust", bobs["beneficiaries"])

	anon := post("", "Anon Trust")
	assert.NotEqual(t, first["id"], anon["id"])
	assert.Equal(t, "Anon Trust", anon["trustName"])

	assert.NotContains(t, first, "idempotencyKey")

	all, err := f.trusts.List(context.Background(), domain.TrustFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateTrustRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/trusts", "", map[string]string{"trustType": "forever"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/trusts", "", map[string]string{
		"notes": strings.Repeat("x", runner.DefaultMaxInputSize+1),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "Notes")

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/trusts", strings.NewReader("{"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestDocuments(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "docs@example.com")

	resp, body := f.do(t, http.MethodPost, "/api/documents", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

	resp, body = f.do(t, http.MethodPost, "/api/documents", token, map[string]string{
		"name": "deed.pdf", "type": "application/pdf", "content": "abc",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	doc := body["document"].(map[string]any)
	id := doc["id"].(string)
	assert.EqualValues(t, 3, doc["size"])

	resp, body = f.do(t, http.MethodGet, "/api/documents", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["documents"], 1)

	resp, _ = f.do(t, http.MethodGet, "/api/documents/"+id, f.register(t, "x@example.com"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/documents/"+id, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = f.do(t, http.MethodGet, "/api/documents/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Document not found", body["error"])
}

func TestAIEndpoints(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/ai/chat", "", map[string]string{"message": "What is a living trust?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["response"], "Living Trust")
	assert.NotNil(t, body["sources"])

	resp, body = f.do(t, http.MethodPost, "/api/ai/chat", "", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Message is required", body["error"])

	resp, body = f.do(t, http.MethodPost, "/api/ai/analyze", "", map[string]string{"documentText": "I, John..."})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 85, body["score"])

	resp, body = f.do(t, http.MethodPost, "/api/ai/analyze", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Document text is required", body["error"])
}

func TestAIRateLimit(t *testing.T) {
	f := newFixture(t, withLimiter(NewRateLimiter(1, 1)))

	resp, _ := f.do(t, http.MethodPost, "/api/ai/chat", "", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/ai/chat", "", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	l := NewRateLimiter(60, 1)
	now := time.Unix(0, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	now = now.Add(time.Hour)
	assert.True(t, l.Allow("b"))
	assert.NotContains(t, l.clients, "a")
}

// walk drives a session to the confirmation prompt over HTTP.
func walk(t *testing.T, f *fixture, token string) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/wizard/sessions", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id := body["state"].(map[string]any)["sessionId"].(string)

	for field, value := range map[string]string{
		"trustName":     "Smith Family Trust",
		"grantorName":   "John Smith",
		"beneficiaries": "Jane Smith (Daughter)",
	} {
		resp, body = f.do(t, http.MethodPatch, "/api/wizard/sessions/"+id+"/draft", token,
			map[string]string{"field": field, "value": value})
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
	}
	for i := 0; i < domain.StepCount; i++ {
		resp, body = f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/next", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
	}
	assert.Equal(t, string(domain.PhaseConfirming), body["state"].(map[string]any)["phase"])
	return id
}

func TestWizardSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "wiz@example.com")

	resp, body := f.do(t, http.MethodGet, "/api/wizard/steps", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["steps"], domain.StepCount)

	resp, body = f.do(t, http.MethodPost, "/api/wizard/sessions", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["state"].(map[string]any)["sessionId"].(string)
	assert.EqualValues(t, 1, body["step"].(map[string]any)["number"])

	resp, body = f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/next", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Please enter a Trust Name to continue.", body["state"].(map[string]any)["notice"])
	assert.NotEmpty(t, body["error"])

	resp, body = f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/back", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, body)

	resp, body = f.do(t, http.MethodPatch, "/api/wizard/sessions/"+id+"/draft", token,
		map[string]string{"field": "favoriteColor", "value": "blue"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

	resp, _ = f.do(t, http.MethodGet, "/api/wizard/sessions/"+id, f.register(t, "spy@example.com"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sessions are private to their owner")

	resp, body = f.do(t, http.MethodGet, "/api/wizard/sessions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{id}, body["sessions"])

	resp, _ = f.do(t, http.MethodDelete, "/api/wizard/sessions/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, body = f.do(t, http.MethodGet, "/api/wizard/sessions/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Session not found", body["error"])
}

func TestWizardConfirmAndCancel(t *testing.T) {
	f := newFixture(t)
	id := walk(t, f, "")

	resp, body := f.do(t, http.MethodGet, "/api/wizard/sessions/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, wizard.ConfirmTitle, body["confirm"].(map[string]any)["title"])
	assert.Contains(t, body["summary"], "Smith Family Trust")

	resp, body = f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/respond", "", map[string]string{"answer": ""})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(domain.PhaseStep5), body["state"].(map[string]any)["phase"], "blank answer cancels")

	resp, _ = f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/next", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/respond", "", map[string]string{"answer": "maybe"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/confirm", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	state := body["state"].(map[string]any)
	assert.Equal(t, string(domain.PhaseSubmitted), state["phase"])
	trustID := state["submission"].(map[string]any)["id"].(string)

	resp, body = f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/confirm", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, trustID, body["state"].(map[string]any)["submission"].(map[string]any)["id"])

	all, err := f.trusts.List(context.Background(), domain.TrustFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWizardConcurrentConfirmSubmitsOnce(t *testing.T) {
	var calls atomic.Int32
	trusts := memory.NewTrustRepository()
	local := gateway.NewLocal(trusts)
	gw := ports.SubmissionGatewayFunc(func(ctx context.Context, req ports.GatewayRequest) (*domain.Trust, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return local.Submit(ctx, req)
	})
	f := newFixture(t, withGateway(gw))
	id := walk(t, f, "")

	var wg sync.WaitGroup
	ids := make([]string, 5)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, body := f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/confirm", "", nil)
			if resp.StatusCode == http.StatusOK {
				ids[i] = body["state"].(map[string]any)["submission"].(map[string]any)["id"].(string)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, got := range ids {
		assert.Equal(t, ids[0], got)
	}
}

func TestWizardConfirmFailure(t *testing.T) {
	f := newFixture(t, withGateway(ports.SubmissionGatewayFunc(
		func(context.Context, ports.GatewayRequest) (*domain.Trust, error) {
			return nil, errors.New("connection refused")
		})))
	id := walk(t, f, "")

	resp, body := f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/confirm", "", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	state := body["state"].(map[string]any)
	assert.Equal(t, string(domain.PhaseConfirming), state["phase"])
	assert.Contains(t, state["lastError"], "try again")
	assert.Equal(t, "Smith Family Trust", state["draft"].(map[string]any)["trustName"])
}

func TestWizardEvents(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodPost, "/api/wizard/sessions", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["state"].(map[string]any)["sessionId"].(string)

	resp, _ = f.do(t, http.MethodGet, "/api/wizard/events", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/wizard/events?session_id=%s&watch=phase", f.srv.URL, id), nil)
	require.NoError(t, err)
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	lines := bufio.NewScanner(stream.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	// watch=phase filters out the draft edit. Only the step advance arrives.
	f.do(t, http.MethodPatch, "/api/wizard/sessions/"+id+"/draft", "", map[string]string{"field": "trustName", "value": "T"})
	f.do(t, http.MethodPost, "/api/wizard/sessions/"+id+"/next", "", nil)

	var data string
	for lines.Scan() {
		if line, ok := strings.CutPrefix(lines.Text(), "data: "); ok && line != "connected" {
			data = line
			break
		}
	}
	var diff domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(data), &diff))
	require.NotNil(t, diff.Phase)
	assert.Equal(t, domain.PhaseStep2, *diff.Phase)
	assert.Empty(t, diff.Draft)
}

func TestStreamManagerDropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	require.NotNil(t, sm.logger)
	ch, cancel := sm.Subscribe("s")
	for i := 0; i < 20; i++ {
		sm.Broadcast("s", "m")
	}
	assert.Len(t, ch, 10)
	cancel()
	cancel()
	assert.Empty(t, sm.subscribers)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Field: domain.FieldTrustName}, http.StatusUnprocessableEntity},
		{&domain.SubmissionError{Cause: errors.New("x")}, http.StatusBadGateway},
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidTransition), http.StatusConflict},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{wizard.ErrInvalidAnswer, http.StatusBadRequest},
		{advisor.ErrTimeout, http.StatusGatewayTimeout},
		{advisor.ErrInvalidOutput, http.StatusBadGateway},
		{&badRequest{msg: "bad"}, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
