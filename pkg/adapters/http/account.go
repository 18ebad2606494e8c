package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/livingtrust/livingtrust/pkg/auth"
	"github.com/livingtrust/livingtrust/pkg/domain"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, resUser)
		return
	}
	sess, err := s.Auth.Register(r.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		s.fail(w, r, err, resUser)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User created successfully",
		Token:   sess.Token,
		User:    sess.User.Public(),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, resUser)
		return
	}
	sess, err := s.Auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.fail(w, r, err, resUser)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   sess.Token,
		User:    sess.User.Public(),
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if header == "" {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	_, token, _ := strings.Cut(header, " ")
	u, err := s.Auth.Me(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		s.fail(w, r, err, resUser)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u.Public()})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.Auth.Users.GetByID(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err, resUser)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, resUser)
		return
	}
	u, err := s.Auth.UpdateProfile(r.Context(), auth.UserID(r.Context()), body.Name, body.Email)
	if err != nil {
		s.fail(w, r, err, resUser)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    u,
	})
}
