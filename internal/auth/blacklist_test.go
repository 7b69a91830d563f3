// AngelaMos | 2026
// blacklist_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlacklist(t *testing.T) (*Blacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBlacklist(client), mr
}

func TestBlacklistRevokeUntilExpiry(t *testing.T) {
	bl, mr := newTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))

	revoked, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := mr.TTL("blacklist:jti-1")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	mr.FastForward(2 * time.Minute)
	revoked, err = bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklistIgnoresExpiredTokens(t *testing.T) {
	bl, mr := newTestBlacklist(t)

	require.NoError(t, bl.Revoke(context.Background(), "jti-old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("blacklist:jti-old"))
}

func TestBlacklistLookupError(t *testing.T) {
	bl, mr := newTestBlacklist(t)
	mr.Close()

	_, err := bl.IsBlacklisted(context.Background(), "jti-1")
	assert.Error(t, err)
}
