package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/livingtrust/livingtrust/pkg/adapters/memory"
	"github.com/livingtrust/livingtrust/pkg/advisor"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/livingtrust/livingtrust/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(gw ports.SubmissionGateway) *Server {
	m := session.NewManager(memory.NewStore(), session.WithGateway(gw))
	return NewServer(m, advisor.NewOffline(), "test")
}

func okGateway() ports.SubmissionGateway {
	return ports.SubmissionGatewayFunc(func(_ context.Context, req ports.GatewayRequest) (*domain.Trust, error) {
		return &domain.Trust{ID: "t-1", TrustDraft: req.Draft, Status: domain.TrustStatusDraft}, nil
	})
}

func call[T any](t *testing.T, fn func(context.Context, mcp.CallToolRequest, map[string]any) (T, error), args map[string]any) (T, error) {
	t.Helper()
	return fn(context.Background(), mcp.CallToolRequest{}, args)
}

func TestWizardTools(t *testing.T) {
	s := newTestServer(okGateway())

	start, err := call(t, s.handleStart, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseStep1, start.Phase)
	require.NotNil(t, start.Step)
	id := map[string]any{"session_id": start.SessionID}

	blocked, err := call(t, s.transition(s.sessions.Next), id)
	require.NoError(t, err, "a blocked step is a result")
	assert.Equal(t, "Please enter a Trust Name to continue.", blocked.Notice)

	for field, value := range map[string]string{
		"trustName": "Smith Family Trust", "grantorName": "John", "beneficiaries": "Jane",
	} {
		_, err := call(t, s.handleUpdate, map[string]any{"session_id": start.SessionID, "field": field, "value": value})
		require.NoError(t, err)
	}
	var res SessionResponse
	for i := 0; i < domain.StepCount; i++ {
		res, err = call(t, s.transition(s.sessions.Next), id)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.PhaseConfirming, res.Phase)
	assert.Contains(t, res.Summary, "Smith Family Trust")
	require.NotNil(t, res.Confirm)

	res, err = call(t, s.transition(s.sessions.Cancel), id)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseStep5, res.Phase)

	_, err = call(t, s.transition(s.sessions.Next), id)
	require.NoError(t, err)
	res, err = call(t, s.transition(s.sessions.Confirm), id)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSubmitted, res.Phase)
	require.NotNil(t, res.Trust)
	assert.Equal(t, "t-1", res.Trust.ID)
}

func TestWizardToolErrors(t *testing.T) {
	s := newTestServer(ports.SubmissionGatewayFunc(func(context.Context, ports.GatewayRequest) (*domain.Trust, error) {
		return nil, errors.New("offline")
	}))
	start, err := call(t, s.handleStart, nil)
	require.NoError(t, err)

	_, err = call(t, s.handleUpdate, map[string]any{"session_id": start.SessionID, "field": "color", "value": "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	_, err = call(t, s.transition(s.sessions.Back), map[string]any{"session_id": start.SessionID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = call(t, s.transition(s.sessions.Next), map[string]any{"session_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAdvisorTools(t *testing.T) {
	s := newTestServer(okGateway())

	reply, err := call(t, s.handleAsk, map[string]any{"message": "Do I need a lawyer?"})
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "attorney")

	a, err := call(t, s.handleAnalyze, map[string]any{"document_text": "text"})
	require.NoError(t, err)
	assert.Equal(t, 85, a.Score)
}

func TestStepsResource(t *testing.T) {
	s := newTestServer(okGateway())
	contents, err := s.readSteps()
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, StepsURI, text.URI)
	var steps []domain.StepSpec
	require.NoError(t, json.Unmarshal([]byte(text.Text), &steps))
	assert.Len(t, steps, domain.StepCount)
}
