package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))
	ctx := context.Background()

	spec := domain.StepSpec{Number: 4, Title: "Successor Trustee", Info: "Pick someone"}
	_ = h.Output(ctx, Event{Kind: EventStep, Step: &spec})
	_ = h.Output(ctx, Event{Kind: EventPrompt, Text: "Name", Current: "a\nb"})
	_ = h.Output(ctx, Event{Kind: EventPrompt, Text: "Other", Placeholder: "e.g."})

	got := out.String()
	for _, want := range []string{"Step 4 of 5: Successor Trustee", "Rendered: > Pick someone", `Name [a\nb]`, "Other (e.g.)"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestTextHandler_InputSanitizes(t *testing.T) {
	in := strings.Repeat("x", DefaultMaxInputSize+1) + "\nok\x07\n"
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(in), out)

	got, err := h.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected control character stripped, got %q", got)
	}
	if !strings.Contains(out.String(), "Please try again") {
		t.Error("expected retry message for oversized input")
	}

	if _, err := h.Input(context.Background()); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestTextHandler_InputRespectsContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := h.Input(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
