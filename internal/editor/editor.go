// Package editor owns the per-user editing session: the profile state,
// the link collection, the debounced save gateway, the notice feed and
// the rendered page preview. Every mutation refreshes the preview from
// current state, so the preview can never drift from what would be
// published.
package editor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/patric-chuzhbe/biolink/internal/db/storage"
	"github.com/patric-chuzhbe/biolink/internal/linkset"
	"github.com/patric-chuzhbe/biolink/internal/logger"
	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/notifier"
	"github.com/patric-chuzhbe/biolink/internal/persist"
	"github.com/patric-chuzhbe/biolink/internal/profilestate"
	"github.com/patric-chuzhbe/biolink/internal/renderer"
	"github.com/patric-chuzhbe/biolink/internal/theme"
)

type mediaKeeper interface {
	Upload(ctx context.Context, bucket, objectPath string, data []byte, overwrite bool) error
	PublicURL(bucket, objectPath string) string
}

// Session is one user's editing state. All methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	userID   string
	profiles *profilestate.Store
	links    *linkset.Manager
	gateway  *persist.Gateway
	notices  *notifier.Notifier
	themes   *theme.Registry

	media         mediaKeeper
	mediaBucket   string
	maxUploadSize int64

	preview string
}

// Snapshot is the session state handed to the dashboard.
type Snapshot struct {
	Profile *models.Profile   `json:"profile"`
	Links   []*models.Link    `json:"links"`
	Preview string            `json:"preview"`
	Notices []notifier.Notice `json:"notices"`
}

// Options carries the collaborators a Session is built from.
type Options struct {
	DB            storage.Storage
	Media         mediaKeeper
	MediaBucket   string
	MaxUploadSize int64
	SaveDelay     time.Duration
	NoticeTTL     time.Duration
	Themes        *theme.Registry
}

// NewSession assembles the editing state for one user. Failed background
// saves surface as error notices rather than panics or silent loss.
func NewSession(userID string, options Options) *Session {
	session := &Session{
		userID:        userID,
		notices:       notifier.New(options.NoticeTTL),
		themes:        options.Themes,
		media:         options.Media,
		mediaBucket:   options.MediaBucket,
		maxUploadSize: options.MaxUploadSize,
	}

	onSaveError := func(err error) {
		logger.Log.Errorln("background save failed:", err)
		session.notices.Error("Could not save your changes")
	}

	session.gateway = persist.New(options.DB, userID, options.SaveDelay, onSaveError)
	session.profiles = profilestate.New(userID, options.DB, session.gateway, session.refreshPreviewLocked)
	session.links = linkset.New(
		userID,
		options.DB,
		options.Media,
		options.MediaBucket,
		options.MaxUploadSize,
		session.refreshPreviewLocked,
		onSaveError,
	)

	return session
}

// Load fetches the profile and links and renders the initial preview.
// A missing profile surfaces as models.ErrProfileNotFound.
func (session *Session) Load(ctx context.Context) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	if _, err := session.profiles.Load(ctx); err != nil {
		return err
	}
	if err := session.links.Load(ctx); err != nil {
		return err
	}

	session.refreshPreviewLocked()

	return nil
}

// CreateProfile claims a username for the user and starts the page with
// the default theme.
func (session *Session) CreateProfile(ctx context.Context, username, displayName string) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	if _, err := session.profiles.Create(ctx, username, displayName); err != nil {
		return err
	}
	if err := session.links.Load(ctx); err != nil {
		return err
	}

	session.refreshPreviewLocked()

	return nil
}

// Snapshot returns the current session state.
func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()

	return Snapshot{
		Profile: session.profiles.Profile(),
		Links:   session.links.Links(),
		Preview: session.preview,
		Notices: session.notices.Active(),
	}
}

// Preview returns the current rendered page.
func (session *Session) Preview() string {
	session.mu.Lock()
	defer session.mu.Unlock()

	return session.preview
}

// Notices returns the currently visible notices.
func (session *Session) Notices() []notifier.Notice {
	return session.notices.Active()
}

// ApplyProfilePatch applies the patch optimistically and routes it to
// the debounced or immediate save path.
func (session *Session) ApplyProfilePatch(ctx context.Context, patch models.ProfilePatch) {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.profiles.ApplyPatch(ctx, patch)
}

// AddLink appends a new link at the end of the list.
func (session *Session) AddLink(ctx context.Context) (*models.Link, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	return session.links.Add(ctx)
}

// UpdateLinkField changes one field of one link.
func (session *Session) UpdateLinkField(ctx context.Context, linkID, field string, value any) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	return session.links.UpdateField(ctx, linkID, field, value)
}

// RemoveLink deletes the link; the caller must have confirmed removal.
func (session *Session) RemoveLink(ctx context.Context, linkID string, confirmed bool) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	return session.links.Remove(ctx, linkID, confirmed)
}

// UploadLinkImage attaches an uploaded image to the link. An in-flight
// notice is shown while the upload runs and is always closed with a
// success or error one.
func (session *Session) UploadLinkImage(ctx context.Context, linkID, fileName string, data []byte) (*models.Link, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.notices.Notify(notifier.SeverityInfo, "Uploading image...")
	link, err := session.links.UploadImage(ctx, linkID, fileName, data)
	if err != nil {
		session.notices.Error("Image upload failed")
		return nil, err
	}
	session.notices.Notify(notifier.SeveritySuccess, "Image uploaded")

	return link, nil
}

// UploadAvatar stores an uploaded avatar image and persists its public
// URL right away; avatar changes never wait on the debounce.
func (session *Session) UploadAvatar(ctx context.Context, fileName string, data []byte) (*models.Profile, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if int64(len(data)) > session.maxUploadSize {
		return nil, models.ErrImageTooLarge
	}
	if session.profiles.Profile() == nil {
		return nil, models.ErrProfileNotFound
	}

	objectPath := fmt.Sprintf("%s/%d%s", session.userID, time.Now().UnixMilli(), filepath.Ext(fileName))

	session.notices.Notify(notifier.SeverityInfo, "Uploading image...")
	if err := session.media.Upload(ctx, session.mediaBucket, objectPath, data, true); err != nil {
		session.notices.Error("Image upload failed")
		return nil, err
	}

	session.profiles.ApplyPatch(ctx, models.ProfilePatch{
		models.FieldAvatarURL: session.media.PublicURL(session.mediaBucket, objectPath),
	})
	session.notices.Notify(notifier.SeveritySuccess, "Image uploaded")

	return session.profiles.Profile(), nil
}

// Notify publishes a notice into the session's feed.
func (session *Session) Notify(severity notifier.Severity, message string) {
	session.notices.Notify(severity, message)
}

// Flush forces any pending debounced save to run now. Used on shutdown
// and sign-out so edits are not lost with the timer.
func (session *Session) Flush(ctx context.Context) {
	session.gateway.Flush(ctx)
}

// refreshPreviewLocked re-renders the preview from current state. The
// caller holds the session mutex (it runs as the mutation callback).
func (session *Session) refreshPreviewLocked() {
	preview, err := renderer.Render(session.profiles.Profile(), session.links.Links(), session.themes)
	if err != nil {
		logger.Log.Errorln("preview render failed:", err)
		return
	}

	session.preview = preview
}

// Registry hands out one Session per user id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	options  Options
}

// NewRegistry returns an empty session registry; every session it
// creates shares the given collaborators.
func NewRegistry(options Options) *Registry {
	return &Registry{
		sessions: map[string]*Session{},
		options:  options,
	}
}

// Get returns the user's session, creating it on first use.
func (registry *Registry) Get(userID string) *Session {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	session, found := registry.sessions[userID]
	if !found {
		session = NewSession(userID, registry.options)
		registry.sessions[userID] = session
	}

	return session
}

// Drop forgets the user's session, flushing pending saves first.
func (registry *Registry) Drop(ctx context.Context, userID string) {
	registry.mu.Lock()
	session, found := registry.sessions[userID]
	delete(registry.sessions, userID)
	registry.mu.Unlock()

	if found {
		session.Flush(ctx)
	}
}

// FlushAll flushes every live session's pending saves.
func (registry *Registry) FlushAll(ctx context.Context) {
	registry.mu.Lock()
	sessions := make([]*Session, 0, len(registry.sessions))
	for _, session := range registry.sessions {
		sessions = append(sessions, session)
	}
	registry.mu.Unlock()

	for _, session := range sessions {
		session.Flush(ctx)
	}
}
