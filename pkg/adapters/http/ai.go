package http

import (
	"net/http"
	"strings"

	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/livingtrust/livingtrust/pkg/runner"
)

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var body ports.ChatRequest
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, "")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	msg, err := runner.SanitizeInput(body.Message)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	ctxText, err := runner.Sanitize(body.Context, runner.DefaultMaxDocumentSize)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	reply, err := s.Advisor.Chat(r.Context(), ports.ChatRequest{Message: msg, Context: ctxText})
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DocumentText string `json:"documentText"`
	}
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, "")
		return
	}
	if strings.TrimSpace(body.DocumentText) == "" {
		writeError(w, http.StatusBadRequest, "Document text is required")
		return
	}
	text, err := runner.Sanitize(body.DocumentText, runner.DefaultMaxDocumentSize)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	analysis, err := s.Advisor.Analyze(r.Context(), text)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
