package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/membership/internal/shared"
	"github.com/odyssey-erp/membership/internal/users"
)

// UserFinder loads a user with its password hash by email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Service wraps authentication business rules.
type Service struct {
	users  UserFinder
	tokens *TokenService

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService constructs a new Service.
func NewService(finder UserFinder, tokens *TokenService) *Service {
	return &Service{users: finder, tokens: tokens}
}

// Authenticate validates email/password credentials. Unknown emails and wrong
// passwords both return shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return users.User{}, shared.ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Spend the same bcrypt time as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.timingHash(), []byte(password))
			return users.User{}, shared.ErrInvalidCredentials
		}
		return users.User{}, fmt.Errorf("auth: find user: %w", err)
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err != nil {
		return users.User{}, fmt.Errorf("auth: compare password: %w", err)
	}
	return user, nil
}

// Login authenticates the credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Token{}, err
	}
	signed, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresIn:   s.tokens.TTLMinutes() * 60,
	}, nil
}

func (s *Service) timingHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("membership-timing-guard"), bcrypt.DefaultCost)
	})
	return s.dummyHash
}
