// Package advisor answers trust questions and reviews trust documents.
//
// Two modes share one contract: OpenAI talks to an OpenAI-compatible
// chat/completions endpoint, Offline classifies the question against a fixed
// set of topics and never fails. New picks the mode from the configuration.
package advisor

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/pkg/ports"
)

var (
	// ErrEmptyInput is returned when the message or document text is blank.
	ErrEmptyInput = errors.New("input is required")

	// ErrUpstream indicates the completion provider failed or answered with a non-2xx status.
	ErrUpstream = errors.New("advisor upstream failed")

	// ErrTimeout indicates the completion request exceeded the configured timeout.
	ErrTimeout = errors.New("advisor request timed out")

	// ErrInvalidOutput indicates the model reply could not be parsed.
	ErrInvalidOutput = errors.New("invalid advisor output")
)

// Disclaimer is appended to the system prompt and shown by clients.
const Disclaimer = "This is general legal information, NOT legal advice."

// Config selects and tunes the advisor.
type Config struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// Defaults for the online mode.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4"
	DefaultTimeout = 30 * time.Second
)

// New returns an OpenAI advisor when an API key is configured, otherwise Offline.
func New(cfg Config, logger *slog.Logger) ports.Advisor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("no AI API key configured, advisor runs in offline mode")
		return NewOffline()
	}
	return NewOpenAI(cfg, WithLogger(logger))
}
