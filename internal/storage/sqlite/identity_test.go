package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentitySeedAndGet(t *testing.T) {
	repo := NewIdentityRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.GetIdentity(ctx)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, repo.EnsureDefault(ctx))

	identity, err := repo.GetIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Krishna", identity.Name)
	assert.Contains(t, identity.CoreDescription, "digital human")
	assert.NotEmpty(t, identity.CommunicationStyle)

	// Idempotent: a second call must not overwrite or fail.
	require.NoError(t, repo.EnsureDefault(ctx))
	again, err := repo.GetIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity, again)
}
