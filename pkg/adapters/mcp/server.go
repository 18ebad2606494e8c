// Package mcp exposes the wizard and the advisor as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/livingtrust/livingtrust/pkg/runner"
	"github.com/livingtrust/livingtrust/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StepsURI is the resource listing the wizard steps.
const StepsURI = "livingtrust://steps"

// Server exposes a session Manager and an Advisor over MCP.
type Server struct {
	sessions  *session.Manager
	advisor   ports.Advisor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, advisor ports.Advisor, version string, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		advisor:   advisor,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("livingtrust-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// SessionResponse is the structured result of every wizard tool.
type SessionResponse struct {
	SessionID string                `json:"session_id" jsonschema_description:"Session to pass to the next call"`
	Phase     domain.Phase          `json:"phase" jsonschema_description:"step1..step5, confirming or submitted"`
	Draft     domain.TrustDraft     `json:"draft"`
	Step      *domain.StepSpec      `json:"step,omitempty" jsonschema_description:"Active step, absent while confirming"`
	Summary   string                `json:"summary,omitempty" jsonschema_description:"Draft summary shown before confirming"`
	Confirm   *wizard.ConfirmPrompt `json:"confirm,omitempty"`
	Notice    string                `json:"notice,omitempty" jsonschema_description:"Required-field message that blocked the last next"`
	Error     string                `json:"error,omitempty" jsonschema_description:"Why the last operation failed; the draft is kept"`
	Trust     *domain.Trust         `json:"trust,omitempty" jsonschema_description:"Created trust once submitted"`
}

func responseOf(st *domain.WizardState) SessionResponse {
	v := wizard.ViewOf(st)
	return SessionResponse{
		SessionID: st.SessionID,
		Phase:     st.Phase,
		Draft:     st.Draft,
		Step:      v.Step,
		Summary:   v.Summary,
		Confirm:   v.Confirm,
		Notice:    st.Notice,
		Error:     st.LastError,
		Trust:     st.Submission,
	}
}

func (s *Server) registerTools() {
	sessionArg := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by wizard_start"))

	s.mcpServer.AddTool(mcp.NewTool("ask_advisor",
		mcp.WithDescription("Ask a general question about living trusts. Answers are legal information, not legal advice."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The question")),
		mcp.WithString("context", mcp.Description("Optional background, e.g. the current draft")),
		mcp.WithOutputSchema[domain.ChatReply](),
	), mcp.NewStructuredToolHandler(s.handleAsk))

	s.mcpServer.AddTool(mcp.NewTool("analyze_document",
		mcp.WithDescription("Review the text of a trust document and return a score, issues and recommendations."),
		mcp.WithString("document_text", mcp.Required(), mcp.Description("Full document text")),
		mcp.WithOutputSchema[domain.Analysis](),
	), mcp.NewStructuredToolHandler(s.handleAnalyze))

	s.mcpServer.AddTool(mcp.NewTool("wizard_start",
		mcp.WithDescription("Start a living trust wizard session at step 1."),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("wizard_update",
		mcp.WithDescription("Set one draft field of the active step. Fields: "+fieldNames()),
		sessionArg,
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleUpdate))

	transitions := []struct {
		name, desc string
		op         func(context.Context, string) (*domain.WizardState, error)
	}{
		{"wizard_next", "Advance to the next step. A blank required field blocks and returns a notice.", s.sessions.Next},
		{"wizard_back", "Return to the previous step without validation.", s.sessions.Back},
		{"wizard_confirm", "Submit the draft while the confirmation prompt is shown.", s.sessions.Confirm},
		{"wizard_cancel", "Dismiss the confirmation prompt and return to step 5.", s.sessions.Cancel},
	}
	for _, tr := range transitions {
		s.mcpServer.AddTool(mcp.NewTool(tr.name,
			mcp.WithDescription(tr.desc),
			sessionArg,
			mcp.WithOutputSchema[SessionResponse](),
		), mcp.NewStructuredToolHandler(s.transition(tr.op)))
	}
}

func fieldNames() string {
	out := ""
	for i, f := range domain.Fields {
		if i > 0 {
			out += ", "
		}
		out += string(f)
	}
	return out
}

func (s *Server) handleAsk(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (domain.ChatReply, error) {
	message, _ := args["message"].(string)
	background, _ := args["context"].(string)
	clean, err := runner.SanitizeInput(message)
	if err != nil {
		return domain.ChatReply{}, fmt.Errorf("input rejected: %w", err)
	}
	reply, err := s.advisor.Chat(ctx, ports.ChatRequest{Message: clean, Context: background})
	if err != nil {
		return domain.ChatReply{}, err
	}
	return *reply, nil
}

func (s *Server) handleAnalyze(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (domain.Analysis, error) {
	text, _ := args["document_text"].(string)
	clean, err := runner.Sanitize(text, runner.DefaultMaxDocumentSize)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("input rejected: %w", err)
	}
	a, err := s.advisor.Analyze(ctx, clean)
	if err != nil {
		return domain.Analysis{}, err
	}
	return *a, nil
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (SessionResponse, error) {
	st, err := s.sessions.Start(ctx, "")
	if err != nil {
		return SessionResponse{}, err
	}
	return responseOf(st), nil
}

func (s *Server) handleUpdate(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	name, _ := args["field"].(string)
	value, _ := args["value"].(string)

	field, err := domain.ParseField(name)
	if err != nil {
		return SessionResponse{}, err
	}
	clean, err := runner.SanitizeInput(value)
	if err != nil {
		s.logger.Warn("MCP update: input rejected", "err", err, "size", len(value))
		return SessionResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	st, err := s.sessions.Update(ctx, id, field, clean)
	if err != nil {
		return SessionResponse{}, err
	}
	return responseOf(st), nil
}

// transition adapts a Manager operation to a tool handler. Blocked steps and
// failed submissions are results, not tool errors: the response carries the
// notice or error and the unchanged draft.
func (s *Server) transition(op func(context.Context, string) (*domain.WizardState, error)) func(context.Context, mcp.CallToolRequest, map[string]any) (SessionResponse, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (SessionResponse, error) {
		id, _ := args["session_id"].(string)
		st, err := op(ctx, id)
		if st != nil && (errors.Is(err, domain.ErrValidationBlocked) || errors.Is(err, domain.ErrSubmissionFailed)) {
			return responseOf(st), nil
		}
		if err != nil {
			return SessionResponse{}, err
		}
		return responseOf(st), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StepsURI, "Wizard steps",
		mcp.WithResourceDescription("The five wizard steps with their fields and required field."),
		mcp.WithMIMEType("application/json"),
	), func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return s.readSteps()
	})
}

func (s *Server) readSteps() ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(wizard.Steps())
	if err != nil {
		return nil, fmt.Errorf("encode steps: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      StepsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
