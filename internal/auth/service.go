package auth

import (
	"context"
	"time"

	"github.com/buspass/bus_pass/internal/config"
	"github.com/buspass/bus_pass/internal/users"
)

// Service issues and verifies bearer tokens for portal users.
type Service struct {
	users  *users.Service
	secret []byte
	ttl    time.Duration
}

// NewService wires token settings from cfg.
func NewService(cfg config.Config, users *users.Service) *Service {
	return &Service{users: users, secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL}
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      users.User
}

// Signup registers a new account.
func (s *Service) Signup(ctx context.Context, in users.SignupInput) (users.User, error) {
	return s.users.Register(ctx, in)
}

// Login validates credentials and issues a token.
func (s *Service) Login(ctx context.Context, creds users.Credentials) (Session, error) {
	user, err := s.users.Authenticate(ctx, creds)
	if err != nil {
		return Session{}, err
	}
	token, exp, err := GenerateToken(user.ID, s.secret, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// Verify returns the user id carried by a bearer token.
func (s *Service) Verify(token string) (string, error) {
	return ParseToken(token, s.secret)
}

// Profile returns the account behind userID.
func (s *Service) Profile(ctx context.Context, userID string) (users.User, error) {
	return s.users.Get(ctx, userID)
}
