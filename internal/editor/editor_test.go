package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/biolink/internal/db/memorystorage"
	"github.com/patric-chuzhbe/biolink/internal/mediastore"
	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/theme"
)

func newTestOptions(t *testing.T) Options {
	theStorage, err := memorystorage.New()
	require.NoError(t, err)

	return Options{
		DB:            theStorage,
		Media:         mediastore.New(t.TempDir(), "http://localhost:8080"),
		MediaBucket:   "avatars",
		MaxUploadSize: 2 * 1024 * 1024,
		SaveDelay:     20 * time.Millisecond,
		NoticeTTL:     time.Hour,
		Themes:        theme.NewRegistry(),
	}
}

func TestLoadWithoutProfile(t *testing.T) {
	session := NewSession("user-1", newTestOptions(t))

	err := session.Load(context.Background())
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestCreateProfileRefreshesPreview(t *testing.T) {
	session := NewSession("user-1", newTestOptions(t))

	require.NoError(t, session.CreateProfile(context.Background(), "tester", "The Tester"))

	snapshot := session.Snapshot()
	require.NotNil(t, snapshot.Profile)
	assert.Equal(t, "tester", snapshot.Profile.Username)
	assert.Contains(t, snapshot.Preview, "@tester")
	assert.Empty(t, snapshot.Links)
}

func TestApplyProfilePatchIsVisibleBeforePersistence(t *testing.T) {
	options := newTestOptions(t)
	session := NewSession("user-1", options)
	ctx := context.Background()

	require.NoError(t, session.CreateProfile(ctx, "tester", "The Tester"))

	session.ApplyProfilePatch(ctx, models.ProfilePatch{models.FieldBio: "fresh bio"})

	// Preview reflects the edit right away.
	assert.Contains(t, session.Preview(), "fresh bio")

	// The debounced write has not landed in the store yet.
	stored, found, err := options.DB.GetProfileByID(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, stored.Bio)

	session.Flush(ctx)

	stored, _, err = options.DB.GetProfileByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh bio", stored.Bio)
}

func TestLinkMutationsRefreshPreview(t *testing.T) {
	session := NewSession("user-1", newTestOptions(t))
	ctx := context.Background()

	require.NoError(t, session.CreateProfile(ctx, "tester", "The Tester"))

	link, err := session.AddLink(ctx)
	require.NoError(t, err)

	require.NoError(t, session.UpdateLinkField(ctx, link.ID, models.LinkFieldTitle, "My Blog"))
	require.NoError(t, session.UpdateLinkField(ctx, link.ID, models.LinkFieldURL, "https://example.com/blog"))
	assert.Contains(t, session.Preview(), "My Blog")

	require.NoError(t, session.RemoveLink(ctx, link.ID, true))
	assert.NotContains(t, session.Preview(), "My Blog")
}

func TestUploadAvatar(t *testing.T) {
	options := newTestOptions(t)
	session := NewSession("user-1", options)
	ctx := context.Background()

	require.NoError(t, session.CreateProfile(ctx, "tester", "The Tester"))

	_, err := session.UploadAvatar(ctx, "big.png", make([]byte, 2*1024*1024+1))
	assert.ErrorIs(t, err, models.ErrImageTooLarge)

	profile, err := session.UploadAvatar(ctx, "avatar.png", []byte("img"))
	require.NoError(t, err)
	assert.Contains(t, profile.AvatarURL, "/media/avatars/user-1/")
	assert.Contains(t, profile.AvatarURL, ".png")
	assert.Contains(t, session.Preview(), profile.AvatarURL)

	// Avatar changes bypass the debounce and land in the store at once.
	stored, found, err := options.DB.GetProfileByID(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, profile.AvatarURL, stored.AvatarURL)
}

func TestRegistryReusesSessions(t *testing.T) {
	registry := NewRegistry(newTestOptions(t))

	first := registry.Get("user-1")
	assert.Same(t, first, registry.Get("user-1"))
	assert.NotSame(t, first, registry.Get("user-2"))

	registry.Drop(context.Background(), "user-1")
	assert.NotSame(t, first, registry.Get("user-1"))
}
