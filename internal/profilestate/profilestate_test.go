package profilestate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/biolink/internal/models"
)

type fakeProfileKeeper struct {
	profiles map[string]*models.Profile
	err      error
}

func (keeper *fakeProfileKeeper) GetProfileByID(ctx context.Context, userID string) (*models.Profile, bool, error) {
	if keeper.err != nil {
		return nil, false, keeper.err
	}
	profile, found := keeper.profiles[userID]

	return profile, found, nil
}

func (keeper *fakeProfileKeeper) InsertProfile(ctx context.Context, profile *models.Profile) error {
	if keeper.err != nil {
		return keeper.err
	}
	for _, existing := range keeper.profiles {
		if existing.Username == profile.Username {
			return models.ErrUsernameTaken
		}
	}
	keeper.profiles[profile.ID] = profile

	return nil
}

type fakeSaver struct {
	scheduled []models.ProfilePatch
	immediate []models.ProfilePatch
}

func (saver *fakeSaver) Schedule(patch models.ProfilePatch) {
	saver.scheduled = append(saver.scheduled, patch)
}

func (saver *fakeSaver) Immediate(ctx context.Context, patch models.ProfilePatch) {
	saver.immediate = append(saver.immediate, patch)
}

func TestLoadDistinguishesMissingFromFailure(t *testing.T) {
	t.Run("missing profile routes to onboarding", func(t *testing.T) {
		store := New("user-1", &fakeProfileKeeper{profiles: map[string]*models.Profile{}}, &fakeSaver{}, nil)

		_, err := store.Load(context.Background())
		assert.ErrorIs(t, err, models.ErrProfileNotFound)
	})

	t.Run("store failure is not a missing profile", func(t *testing.T) {
		store := New("user-1", &fakeProfileKeeper{err: assert.AnError}, &fakeSaver{}, nil)

		_, err := store.Load(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrProfileNotFound)
	})
}

func TestCreateClaimsUsername(t *testing.T) {
	keeper := &fakeProfileKeeper{profiles: map[string]*models.Profile{}}

	first := New("user-1", keeper, &fakeSaver{}, nil)
	profile, err := first.Create(context.Background(), "tester", "The Tester")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "default", profile.ThemeID)

	second := New("user-2", keeper, &fakeSaver{}, nil)
	_, err = second.Create(context.Background(), "tester", "Copycat")
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestApplyPatchIsOptimistic(t *testing.T) {
	keeper := &fakeProfileKeeper{profiles: map[string]*models.Profile{
		"user-1": {ID: "user-1", Username: "tester"},
	}}
	saver := &fakeSaver{}

	changes := 0
	store := New("user-1", keeper, saver, func() { changes++ })

	_, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, changes)

	store.ApplyPatch(context.Background(), models.ProfilePatch{models.FieldBio: "hello"})

	// The in-memory document changed before any persistence happened.
	assert.Equal(t, "hello", store.Profile().Bio)
	assert.Equal(t, 2, changes)
}

func TestApplyPatchCannotChangeUsername(t *testing.T) {
	keeper := &fakeProfileKeeper{profiles: map[string]*models.Profile{
		"user-1": {ID: "user-1", Username: "tester"},
	}}
	saver := &fakeSaver{}
	store := New("user-1", keeper, saver, nil)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	store.ApplyPatch(context.Background(), models.ProfilePatch{
		models.FieldUsername: "hijacked",
		models.FieldBio:      "new",
	})

	assert.Equal(t, "tester", store.Profile().Username)
	assert.Equal(t, "new", store.Profile().Bio)

	// The persisted patch no longer carries the username either.
	require.Len(t, saver.scheduled, 1)
	assert.NotContains(t, saver.scheduled[0], models.FieldUsername)
}

func TestApplyPatchRoutesByFieldKind(t *testing.T) {
	type tTestCase struct {
		name              string
		patch             models.ProfilePatch
		expectedScheduled int
		expectedImmediate int
	}
	testCases := []tTestCase{
		{
			name:              "keystroke fields are debounced",
			patch:             models.ProfilePatch{models.FieldBio: "typing", models.FieldDisplayName: "T"},
			expectedScheduled: 1,
		},
		{
			name:              "discrete fields persist immediately",
			patch:             models.ProfilePatch{models.FieldThemeID: "dark"},
			expectedImmediate: 1,
		},
		{
			name:              "mixed patches persist immediately as a whole",
			patch:             models.ProfilePatch{models.FieldBio: "typing", models.FieldThemeID: "dark"},
			expectedImmediate: 1,
		},
		{
			name:  "empty patch is a no-op",
			patch: models.ProfilePatch{},
		},
		{
			name:  "patch of immutable keys only is a no-op",
			patch: models.ProfilePatch{models.FieldUsername: "hijacked", "id": "user-2"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			keeper := &fakeProfileKeeper{profiles: map[string]*models.Profile{
				"user-1": {ID: "user-1", Username: "tester"},
			}}
			saver := &fakeSaver{}
			store := New("user-1", keeper, saver, nil)

			_, err := store.Load(context.Background())
			require.NoError(t, err)

			store.ApplyPatch(context.Background(), testCase.patch)

			assert.Len(t, saver.scheduled, testCase.expectedScheduled)
			assert.Len(t, saver.immediate, testCase.expectedImmediate)
		})
	}
}
