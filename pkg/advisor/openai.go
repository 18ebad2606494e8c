package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/tidwall/gjson"
)

const chatSystemPrompt = `You are an AI Lawyer Assistant specializing in Living Trusts and Estate Planning.

Your role is to:
- Help users understand Living Trusts
- Explain legal concepts in simple terms
- Provide general legal information (NOT legal advice)
- Guide users through creating a Living Trust
- Review and analyze Trust documents

Important disclaimers:
- Always remind users this is NOT legal advice
- Recommend consulting with a qualified attorney for complex situations
- Stay within bounds of general information`

const analyzeSystemPrompt = `You are an AI document analyzer specializing in Living Trusts.

Analyze the provided Living Trust document and return a JSON response with:
1. score (0-100) - overall quality score
2. issues (array) - problems found, each with severity (low|medium|high), text and suggestion
3. recommendations (array of strings) - improvements needed
4. summary (string) - brief overall assessment

Return ONLY valid JSON, no other text.`

const emptyCompletion = "I apologize, I could not generate a response."

// OpenAI is the online advisor.
type OpenAI struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ ports.Advisor = (*OpenAI)(nil)

// OpenAIOption configures an OpenAI advisor.
type OpenAIOption func(*OpenAI)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		if c != nil {
			o.http = c
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) OpenAIOption {
	return func(o *OpenAI) {
		if l != nil {
			o.logger = l
		}
	}
}

func NewOpenAI(cfg Config, opts ...OpenAIOption) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	o := &OpenAI{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

func (o *OpenAI) Chat(ctx context.Context, req ports.ChatRequest) (*domain.ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("message: %w", ErrEmptyInput)
	}
	messages := []chatMessage{{Role: "system", Content: chatSystemPrompt}}
	if c := strings.TrimSpace(req.Context); c != "" {
		messages = append(messages, chatMessage{Role: "system", Content: "Context from the user's draft:\n" + c})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Message})

	text, err := o.complete(ctx, completionRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = emptyCompletion
	}
	return &domain.ChatReply{Response: text, Sources: []string{}}, nil
}

func (o *OpenAI) Analyze(ctx context.Context, documentText string) (*domain.Analysis, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, fmt.Errorf("document text: %w", ErrEmptyInput)
	}
	text, err := o.complete(ctx, completionRequest{
		Model: o.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: analyzeSystemPrompt},
			{Role: "user", Content: documentText},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}
	a, err := ExtractJSON[domain.Analysis](text, nil)
	if err != nil {
		return nil, err
	}
	return normalizeAnalysis(&a), nil
}

// complete sends the request, retrying up to MaxRetries times.
// Cancellation and timeouts are not retried.
func (o *OpenAI) complete(ctx context.Context, body completionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	start := time.Now()
	var lastErr error
	attempts := 1 + o.cfg.MaxRetries
	for i := 0; i < attempts; i++ {
		text, err := o.doRequest(ctx, body)
		if err == nil {
			o.logger.Debug("advisor completion", "model", body.Model, "attempt", i+1, "latency", time.Since(start))
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil || errors.Is(err, ErrInvalidOutput) {
			break
		}
		o.logger.Warn("advisor completion failed", "attempt", i+1, "err", err)
	}

	if ctx.Err() != nil {
		return "", ErrTimeout
	}
	if errors.Is(lastErr, ErrInvalidOutput) {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: %v", ErrUpstream, lastErr)
}

func (o *OpenAI) doRequest(ctx context.Context, body completionRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("provider returned status %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("%w: response is not JSON", ErrInvalidOutput)
	}
	return gjson.GetBytes(raw, "choices.0.message.content").String(), nil
}

func normalizeAnalysis(a *domain.Analysis) *domain.Analysis {
	a.Score = min(max(a.Score, 0), 100)
	if a.Issues == nil {
		a.Issues = []domain.Issue{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	for i := range a.Issues {
		switch a.Issues[i].Severity {
		case domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh:
		default:
			a.Issues[i].Severity = domain.SeverityMedium
		}
	}
	return a
}
