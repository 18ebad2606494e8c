package http

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/livingtrust/livingtrust/pkg/auth"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/runner"
)

func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	var body domain.Document
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, resDocument)
		return
	}
	name, err := runner.SanitizeInput(strings.TrimSpace(body.Name))
	if err == nil && name == "" {
		err = &badRequest{msg: "Document name is required"}
	}
	if err != nil {
		s.fail(w, r, err, resDocument)
		return
	}
	content, err := runner.Sanitize(body.Content, runner.DefaultMaxDocumentSize)
	if err != nil {
		s.fail(w, r, err, resDocument)
		return
	}

	doc := &domain.Document{
		ID:         s.newID(),
		Name:       name,
		Type:       strings.TrimSpace(body.Type),
		URL:        strings.TrimSpace(body.URL),
		Content:    content,
		Size:       body.Size,
		OwnerID:    auth.UserID(r.Context()),
		UploadedAt: s.now(),
	}
	if doc.Size == 0 {
		doc.Size = int64(len(content))
	}
	if err := s.Documents.Create(r.Context(), doc); err != nil {
		s.fail(w, r, err, resDocument)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	owner := auth.UserID(r.Context())
	docs, err := s.Documents.List(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err, resDocument)
		return
	}
	if owner == "" {
		docs = slices.DeleteFunc(docs, func(d *domain.Document) bool { return d.OwnerID != "" })
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) ownedDocument(r *http.Request) (*domain.Document, error) {
	d, err := s.Documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if !visible(d.OwnerID, auth.UserID(r.Context())) {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	d, err := s.ownedDocument(r)
	if err != nil {
		s.fail(w, r, err, resDocument)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": d})
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	d, err := s.ownedDocument(r)
	if err == nil {
		err = s.Documents.Delete(r.Context(), d.ID)
	}
	if err != nil {
		s.fail(w, r, err, resDocument)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}
