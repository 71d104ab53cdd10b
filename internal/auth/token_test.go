package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/medira-his/medira/internal/auth"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
)

func newTokenStore(t *testing.T, ttl time.Duration) (*auth.TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return auth.NewTokenStore(client, ttl), mr
}

func TestTokenIssueAndClaims(t *testing.T) {
	store, _ := newTokenStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, 42, []string{rbac.AbilityPharmacist})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	claims, err := store.Claims(ctx, token)
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if claims.PrincipalID != 42 {
		t.Fatalf("principal id = %d, want 42", claims.PrincipalID)
	}
	if len(claims.Abilities) != 1 || claims.Abilities[0] != rbac.AbilityPharmacist {
		t.Fatalf("abilities = %v", claims.Abilities)
	}
}

func TestTokenRevokedAtSignOut(t *testing.T) {
	store, _ := newTokenStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, 1, []string{rbac.AbilitySuperAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.Claims(ctx, token); err != shared.ErrTokenRevoked {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestTokenExpires(t *testing.T) {
	store, mr := newTokenStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.Issue(ctx, 1, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Claims(ctx, token); err != shared.ErrTokenRevoked {
		t.Fatalf("expected ErrTokenRevoked after expiry, got %v", err)
	}
}

func TestEmptyTokenRejected(t *testing.T) {
	store, _ := newTokenStore(t, time.Minute)
	if _, err := store.Claims(context.Background(), ""); err != shared.ErrTokenRevoked {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}
