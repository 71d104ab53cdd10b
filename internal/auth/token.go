package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medira-his/medira/internal/shared"
)

// TokenClaims is the server-side record behind an issued bearer token.
type TokenClaims struct {
	PrincipalID int64     `json:"principal_id"`
	Abilities   []string  `json:"abilities"`
	IssuedAt    time.Time `json:"issued_at"`
}

// TokenStore mints and resolves opaque capability tokens backed by Redis.
// Tokens live for the configured TTL and are removed at sign-out, so
// revocation is immediate.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue mints a token carrying the given ability subset.
func (s *TokenStore) Issue(ctx context.Context, principalID int64, abilities []string) (string, error) {
	token := generateToken()
	payload, err := json.Marshal(TokenClaims{
		PrincipalID: principalID,
		Abilities:   abilities,
		IssuedAt:    time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, tokenKey(token), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Claims resolves a presented token. Unknown or expired tokens return
// ErrTokenRevoked.
func (s *TokenStore) Claims(ctx context.Context, token string) (*TokenClaims, error) {
	if token == "" {
		return nil, shared.ErrTokenRevoked
	}
	payload, err := s.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrTokenRevoked
		}
		return nil, err
	}
	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// Revoke invalidates a token at sign-out.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	err := s.client.Del(ctx, tokenKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// TTL exposes the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

func tokenKey(token string) string {
	return "token:" + token
}

func generateToken() string {
	if id, err := uuid.NewRandom(); err == nil {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err == nil {
			return id.String() + "." + base64.RawURLEncoding.EncodeToString(b)
		}
		return id.String()
	}
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
