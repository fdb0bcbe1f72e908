package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/membership/internal/shared"
)

// TokenType is reported alongside every issued token.
const TokenType = "bearer"

// Claims carried by access tokens. The subject is the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    int
	issuer string
	now    func() time.Time
}

// NewTokenService builds a TokenService. ttlMinutes is the token lifetime.
func NewTokenService(secret string, ttlMinutes int, issuer string) *TokenService {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenService{secret: []byte(secret), ttl: ttlMinutes, issuer: issuer, now: time.Now}
}

// TTLMinutes returns the configured token lifetime in minutes.
func (s *TokenService) TTLMinutes() int {
	return s.ttl
}

// Issue signs a token for the given user.
func (s *TokenService) Issue(userID int64, email string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("auth: signing secret not configured")
	}
	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.ttl) * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it names.
// Every failure wraps shared.ErrUnauthenticated.
func (s *TokenService) Verify(token string) (shared.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return shared.Identity{}, fmt.Errorf("%w: %v", shared.ErrUnauthenticated, err)
	}
	if !parsed.Valid {
		return shared.Identity{}, shared.ErrUnauthenticated
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return shared.Identity{}, fmt.Errorf("%w: bad subject %q", shared.ErrUnauthenticated, claims.Subject)
	}
	return shared.Identity{UserID: userID, Email: claims.Email}, nil
}
