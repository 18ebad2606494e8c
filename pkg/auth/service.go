// Package auth registers users and issues HS256 bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTTL is the token lifetime when Service.TTL is zero.
const DefaultTTL = 7 * 24 * time.Hour

// BcryptCost is the cost used for password hashes.
const BcryptCost = 10

var (
	// ErrInvalidToken is returned for missing, malformed, expired or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidInput is returned when register or profile fields are missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// Claims are the JWT claims carried by a bearer token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Session is the result of Register and Login.
type Session struct {
	Token string
	User  *domain.User
}

// Service implements register, login and token verification.
type Service struct {
	Users  ports.UserRepository
	Secret []byte
	TTL    time.Duration

	// Now and NewID are overridable in tests.
	Now   func() time.Time
	NewID func() string
}

// NewService creates a Service with default TTL and clocks.
func NewService(users ports.UserRepository, secret string) *Service {
	return &Service{
		Users:  users,
		Secret: []byte(secret),
		TTL:    DefaultTTL,
		Now:    func() time.Time { return time.Now().UTC() },
		NewID:  uuid.NewString,
	}
}

// Register creates an account and returns a token for it.
func (s *Service) Register(ctx context.Context, email, password, name string) (*Session, error) {
	email = strings.TrimSpace(email)
	if err := validEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u := &domain.User{
		ID:           s.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    s.Now(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login verifies the credentials. Unknown emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.session(u)
}

// Me resolves a token to its user.
func (s *Service) Me(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return s.Users.GetByID(ctx, claims.UserID)
}

// UpdateProfile changes the name and email of a user. Blank values are kept.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n := strings.TrimSpace(name); n != "" {
		u.Name = n
	}
	if e := strings.TrimSpace(email); e != "" {
		if err := validEmail(e); err != nil {
			return nil, err
		}
		u.Email = e
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// IssueToken signs a token for u.
func (s *Service) IssueToken(u *domain.User) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := s.Now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its claims.
func (s *Service) ParseToken(token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.Now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) session(u *domain.User) (*Session, error) {
	token, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

func validEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, email)
	}
	return nil
}
