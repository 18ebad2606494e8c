package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// TextHandler implements the interactive text interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump starts the goroutine that reads lines, so Input can return as
// soon as ctx is cancelled even while a read is blocked.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff for non-fatal errors to prevent CPU spikes on persistent failure
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (h *TextHandler) Output(_ context.Context, ev Event) error {
	switch ev.Kind {
	case EventStep:
		if ev.Step == nil {
			return nil
		}
		fmt.Fprintf(h.Writer, "\n== Step %d of 5: %s ==\n", ev.Step.Number, ev.Step.Title)
		if ev.Step.Info != "" {
			fmt.Fprintln(h.Writer, h.render("> "+ev.Step.Info))
		}
	case EventPrompt:
		fmt.Fprint(h.Writer, ev.Text)
		switch {
		case ev.Current != "":
			fmt.Fprintf(h.Writer, " [%s]", strings.ReplaceAll(ev.Current, "\n", `\n`))
		case ev.Placeholder != "":
			fmt.Fprintf(h.Writer, " (%s)", ev.Placeholder)
		}
		fmt.Fprintln(h.Writer)
	case EventNotice:
		fmt.Fprintf(h.Writer, "! %s\n", ev.Text)
	case EventSummary:
		fmt.Fprintln(h.Writer, "\n"+h.render(ev.Text))
	case EventError:
		fmt.Fprintf(h.Writer, "Error: %s\n", ev.Text)
	case EventDone:
		fmt.Fprintln(h.Writer, "\n"+ev.Text)
	}
	return nil
}

func (h *TextHandler) render(md string) string {
	if h.Renderer == nil {
		return md
	}
	out, err := h.Renderer(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
	return nil
}
