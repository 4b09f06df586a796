package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/biolink/internal/db/storage"
	"github.com/patric-chuzhbe/biolink/internal/models"
)

var _ storage.Storage = (*MemoryStorage)(nil)

func TestMemoryStorageHasNoFileBehindIt(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, theStorage.InsertProfile(ctx, &models.Profile{ID: "user-1", Username: "tester"}))

	require.NoError(t, theStorage.Ping(ctx))
	require.NoError(t, theStorage.Close())

	// Close drops nothing: the cache stays usable.
	profile, found, err := theStorage.GetProfileByID(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tester", profile.Username)
}
