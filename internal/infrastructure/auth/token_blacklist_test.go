package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_RevokeToken(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issued := time.Now()

	require.NoError(t, blacklist.RevokeToken(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsRevoked(ctx, "jti-1", "user-1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-2", "user-1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_Expiry(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	blacklist.now = func() time.Time { return now }

	require.NoError(t, blacklist.RevokeToken(ctx, "jti-short", time.Minute))
	now = now.Add(2 * time.Minute)

	revoked, err := blacklist.IsRevoked(ctx, "jti-short", "user-1", now)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NotContains(t, blacklist.tokens, "jti-short", "expired entries are dropped")

	// an already expired token is not stored
	require.NoError(t, blacklist.RevokeToken(ctx, "jti-expired", 0))
	assert.NotContains(t, blacklist.tokens, "jti-expired")
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issuedBefore := time.Now().Add(-time.Hour)

	revoked, err := blacklist.IsRevoked(ctx, "jti-1", "user-1", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.RevokeUser(ctx, "user-1", 24*time.Hour))

	revoked, err = blacklist.IsRevoked(ctx, "jti-1", "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-2", "user-1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after the revocation stay valid")

	revoked, err = blacklist.IsRevoked(ctx, "jti-1", "user-2", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokedFromValues(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		values  []any
		revoked bool
		wantErr bool
	}{
		{"nothing stored", []any{nil, nil}, false, false},
		{"token revoked", []any{"1", nil}, true, false},
		{"user revoked after issue", []any{nil, "1700000100"}, true, false},
		{"user revoked at issue second", []any{nil, "1700000000"}, true, false},
		{"user revoked before issue", []any{nil, "1699999000"}, false, false},
		{"corrupt user value", []any{nil, "yesterday"}, false, true},
		{"short reply", []any{nil}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revoked, err := revokedFromValues(tt.values, issued)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.revoked, revoked)
		})
	}
}

func TestRedisTokenBlacklist_Keys(t *testing.T) {
	b := NewRedisTokenBlacklist(nil, "storefront:token:blacklist:")
	assert.Equal(t, "storefront:token:blacklist:jti:abc", b.tokenKey("abc"))
	assert.Equal(t, "storefront:token:blacklist:user:42", b.userKey("42"))
}
