package jsondb

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/biolink/internal/db/storage"
	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/user"
)

const testDBFileName = "db_test.json"

var _ storage.Storage = (*JSONDB)(nil)

func newTestDB(t *testing.T) *JSONDB {
	theDB, err := New(testDBFileName)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, os.Remove(testDBFileName))
	})

	return theDB
}

func TestUsersRoundtrip(t *testing.T) {
	theDB := newTestDB(t)
	ctx := context.Background()

	userID, err := theDB.CreateUser(ctx, &user.User{Email: "tester@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	byID, found, err := theDB.GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tester@example.com", byID.Email)

	byEmail, found, err := theDB.GetUserByEmail(ctx, "tester@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, userID, byEmail.ID)

	_, found, err = theDB.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, found)

	byID.OneTimeCode = "123456"
	require.NoError(t, theDB.UpdateUser(ctx, byID))

	updated, found, err := theDB.GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "123456", updated.OneTimeCode)
}

func TestProfilesRoundtrip(t *testing.T) {
	theDB := newTestDB(t)
	ctx := context.Background()

	profile := &models.Profile{ID: "user-1", Username: "tester", ThemeID: "default"}
	require.NoError(t, theDB.InsertProfile(ctx, profile))

	t.Run("username conflict", func(t *testing.T) {
		err := theDB.InsertProfile(ctx, &models.Profile{ID: "user-2", Username: "tester"})
		assert.ErrorIs(t, err, models.ErrUsernameTaken)
	})

	t.Run("owner conflict", func(t *testing.T) {
		err := theDB.InsertProfile(ctx, &models.Profile{ID: "user-1", Username: "other"})
		assert.ErrorIs(t, err, models.ErrUsernameTaken)
	})

	byUsername, found, err := theDB.GetProfileByUsername(ctx, "tester")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "user-1", byUsername.ID)

	require.NoError(t, theDB.UpdateProfile(ctx, "user-1", models.ProfilePatch{models.FieldBio: "hello"}))

	byID, found, err := theDB.GetProfileByID(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hello", byID.Bio)

	err = theDB.UpdateProfile(ctx, "no-such-user", models.ProfilePatch{models.FieldBio: "x"})
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestLinksOrderingAndLifecycle(t *testing.T) {
	theDB := newTestDB(t)
	ctx := context.Background()

	idSecond, err := theDB.InsertLink(ctx, &models.Link{UserID: "user-1", Title: "Second", OrderIndex: 5, IsEnabled: true})
	require.NoError(t, err)
	idFirst, err := theDB.InsertLink(ctx, &models.Link{UserID: "user-1", Title: "First", OrderIndex: 1, IsEnabled: true})
	require.NoError(t, err)
	_, err = theDB.InsertLink(ctx, &models.Link{UserID: "somebody-else", Title: "Foreign", OrderIndex: 0})
	require.NoError(t, err)

	links, err := theDB.GetUserLinks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, idFirst, links[0].ID)
	assert.Equal(t, idSecond, links[1].ID)

	require.NoError(t, theDB.UpdateLink(ctx, idFirst, models.LinkPatch{models.LinkFieldTitle: "Renamed"}))
	links, err = theDB.GetUserLinks(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", links[0].Title)

	require.NoError(t, theDB.DeleteLink(ctx, idFirst))
	assert.ErrorIs(t, theDB.DeleteLink(ctx, idFirst), models.ErrLinkNotFound)

	links, err = theDB.GetUserLinks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, 5, links[0].OrderIndex)
}

func TestCloseAndReopenKeepsData(t *testing.T) {
	theDB, err := New(testDBFileName)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, os.Remove(testDBFileName))
	}()

	ctx := context.Background()
	require.NoError(t, theDB.InsertProfile(ctx, &models.Profile{ID: "user-1", Username: "tester"}))
	require.NoError(t, theDB.Close())

	reopened, err := New(testDBFileName)
	require.NoError(t, err)

	profile, found, err := reopened.GetProfileByID(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tester", profile.Username)

	profiles, err := reopened.GetNumberOfProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profiles)
}
