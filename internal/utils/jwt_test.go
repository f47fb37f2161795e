package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(42, "testsecret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token, "testsecret")
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.UserID)
	require.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "testsecret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "othersecret")
	require.Error(t, err)
}

func TestParseJWTGarbage(t *testing.T) {
	_, err := ParseJWT("not.a.token", "testsecret")
	require.Error(t, err)
}

func TestRevokeTokenDenylists(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	ctx := context.Background()

	require.False(t, TokenRevoked(ctx, rdb, "some-token"))
	require.NoError(t, RevokeToken(ctx, rdb, "some-token", time.Now().Add(time.Hour)))
	require.True(t, TokenRevoked(ctx, rdb, "some-token"))

	// The denylist entry dies with the token it covers
	srv.FastForward(2 * time.Hour)
	require.False(t, TokenRevoked(ctx, rdb, "some-token"))
}

func TestRevokeExpiredTokenIsNoOp(t *testing.T) {
	// Client points nowhere; an expired token must not touch Redis at all
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	err := RevokeToken(context.Background(), rdb, "stale", time.Now().Add(-time.Minute))
	require.NoError(t, err)
}

func TestTokenRevokedFailsOpen(t *testing.T) {
	// A Redis outage must read as "not revoked", not lock everyone out
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	require.False(t, TokenRevoked(context.Background(), rdb, "whatever"))
}
