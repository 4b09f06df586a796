// Package profilestate owns the authoritative in-memory profile document
// of an editing session. Mutations are applied optimistically and then
// routed to persistence; failures are reported, never rolled back.
package profilestate

import (
	"context"
	"fmt"

	"github.com/patric-chuzhbe/biolink/internal/models"
)

type profileKeeper interface {
	GetProfileByID(ctx context.Context, userID string) (*models.Profile, bool, error)
	InsertProfile(ctx context.Context, profile *models.Profile) error
}

type profileSaver interface {
	Schedule(patch models.ProfilePatch)
	Immediate(ctx context.Context, patch models.ProfilePatch)
}

// Store holds the profile document for one editing session.
type Store struct {
	userID   string
	profile  *models.Profile
	db       profileKeeper
	gateway  profileSaver
	onChange func()
}

// New returns a store for the given user. onChange fires after every
// in-memory mutation (used for the live preview refresh); it may be nil.
func New(userID string, db profileKeeper, gateway profileSaver, onChange func()) *Store {
	return &Store{
		userID:   userID,
		db:       db,
		gateway:  gateway,
		onChange: onChange,
	}
}

// Profile returns the current in-memory document, nil before Load/Create.
func (store *Store) Profile() *models.Profile {
	return store.profile
}

// Load fetches the profile from the document store. A missing profile is
// the expected outcome right after account creation and is reported as
// models.ErrProfileNotFound so the caller routes to onboarding; any other
// error is a remote failure and must not be mistaken for a fresh account.
func (store *Store) Load(ctx context.Context) (*models.Profile, error) {
	profile, found, err := store.db.GetProfileByID(ctx, store.userID)
	if err != nil {
		return nil, fmt.Errorf("in internal/profilestate/profilestate.go/Load(): error while `store.db.GetProfileByID()` calling: %w", err)
	}
	if !found {
		return nil, models.ErrProfileNotFound
	}

	store.profile = profile
	store.notifyChange()

	return profile, nil
}

// Create inserts the profile during onboarding. A taken username surfaces
// as models.ErrUsernameTaken and keeps the caller on the onboarding view.
func (store *Store) Create(ctx context.Context, username, displayName string) (*models.Profile, error) {
	profile := &models.Profile{
		ID:          store.userID,
		Username:    username,
		DisplayName: displayName,
		ThemeID:     "default",
	}

	if err := store.db.InsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	store.profile = profile
	store.notifyChange()

	return profile, nil
}

// ApplyPatch updates the in-memory profile immediately and schedules
// persistence: a patch touching only keystroke-driven fields is debounced,
// anything else is written at once. Returns before any network activity.
// The username and the id are fixed at creation; patches carrying them
// have those keys dropped before anything else happens.
func (store *Store) ApplyPatch(ctx context.Context, patch models.ProfilePatch) {
	delete(patch, models.FieldUsername)
	delete(patch, "id")

	if store.profile == nil || len(patch) == 0 {
		return
	}

	store.profile.Apply(patch)
	store.notifyChange()

	if patch.IsDebounced() {
		store.gateway.Schedule(patch)
		return
	}
	store.gateway.Immediate(ctx, patch)
}

func (store *Store) notifyChange() {
	if store.onChange != nil {
		store.onChange()
	}
}
