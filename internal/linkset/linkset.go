// Package linkset manages the ordered collection of a user's outbound
// links. Every mutation is applied to the in-memory collection first,
// refreshes the preview, and then persists; persistence failures surface
// as notices without reverting the optimistic state.
package linkset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	funk "github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/biolink/internal/models"
)

const defaultLinkTitle = "New Link"

type linksKeeper interface {
	GetUserLinks(ctx context.Context, userID string) ([]*models.Link, error)
	InsertLink(ctx context.Context, link *models.Link) (string, error)
	UpdateLink(ctx context.Context, linkID string, patch models.LinkPatch) error
	DeleteLink(ctx context.Context, linkID string) error
}

type mediaKeeper interface {
	Upload(ctx context.Context, bucket, objectPath string, data []byte, overwrite bool) error
	PublicURL(bucket, objectPath string) string
}

// Manager is the in-memory ordered link collection of one editing session.
type Manager struct {
	userID        string
	links         []*models.Link
	db            linksKeeper
	media         mediaKeeper
	mediaBucket   string
	maxUploadSize int64
	onMutate      func()
	onError       func(error)
}

// New returns a manager for the given user's links. onMutate fires after
// every optimistic mutation (preview refresh); onError receives
// persistence failures. Either may be nil.
func New(
	userID string,
	db linksKeeper,
	media mediaKeeper,
	mediaBucket string,
	maxUploadSize int64,
	onMutate func(),
	onError func(error),
) *Manager {
	return &Manager{
		userID:        userID,
		db:            db,
		media:         media,
		mediaBucket:   mediaBucket,
		maxUploadSize: maxUploadSize,
		onMutate:      onMutate,
		onError:       onError,
	}
}

// Load fetches the user's links, ordered ascending by order index.
func (manager *Manager) Load(ctx context.Context) error {
	links, err := manager.db.GetUserLinks(ctx, manager.userID)
	if err != nil {
		return fmt.Errorf("in internal/linkset/linkset.go/Load(): error while `manager.db.GetUserLinks()` calling: %w", err)
	}

	manager.links = links
	manager.mutated()

	return nil
}

// Links returns the in-memory collection in its current order.
func (manager *Manager) Links() []*models.Link {
	return manager.links
}

// Add appends a new link with the default title, an empty URL and an
// order index equal to the current collection size, then persists it. The
// storage-assigned identifier is merged into the local entry once the
// insert completes; until then the entry has no real id.
func (manager *Manager) Add(ctx context.Context) (*models.Link, error) {
	link := &models.Link{
		UserID:     manager.userID,
		Title:      defaultLinkTitle,
		URL:        "",
		IsEnabled:  true,
		OrderIndex: len(manager.links),
	}

	manager.links = append(manager.links, link)
	manager.mutated()

	id, err := manager.db.InsertLink(ctx, link)
	if err != nil {
		manager.reportError(err)
		return link, err
	}
	link.ID = id

	return link, nil
}

// UpdateField mutates a single field of the local entry, refreshes the
// preview and persists just that field.
func (manager *Manager) UpdateField(ctx context.Context, linkID, field string, value any) error {
	link := manager.find(linkID)
	if link == nil {
		return models.ErrLinkNotFound
	}

	patch := models.LinkPatch{field: value}
	link.Apply(patch)
	manager.mutated()

	if err := manager.db.UpdateLink(ctx, linkID, patch); err != nil {
		manager.reportError(err)
		return err
	}

	return nil
}

// Remove deletes a link. The explicit user confirmation is required; the
// remaining entries keep their order index values untouched.
func (manager *Manager) Remove(ctx context.Context, linkID string, confirmed bool) error {
	if !confirmed {
		return models.ErrRemovalNotConfirmed
	}
	if manager.find(linkID) == nil {
		return models.ErrLinkNotFound
	}

	manager.links = funk.Filter(manager.links, func(link *models.Link) bool {
		return link.ID != linkID
	}).([]*models.Link)
	manager.mutated()

	if err := manager.db.DeleteLink(ctx, linkID); err != nil {
		manager.reportError(err)
		return err
	}

	return nil
}

// UploadImage stores the image bytes with the object storage collaborator
// and persists the resulting public URL as the link's image. Oversized
// payloads are rejected before any collaborator call.
func (manager *Manager) UploadImage(ctx context.Context, linkID, fileName string, data []byte) (*models.Link, error) {
	if int64(len(data)) > manager.maxUploadSize {
		return nil, models.ErrImageTooLarge
	}

	link := manager.find(linkID)
	if link == nil {
		return nil, models.ErrLinkNotFound
	}

	objectPath := fmt.Sprintf(
		"%s/links/%s_%d%s",
		manager.userID,
		linkID,
		time.Now().UnixMilli(),
		filepath.Ext(fileName),
	)

	if err := manager.media.Upload(ctx, manager.mediaBucket, objectPath, data, true); err != nil {
		manager.reportError(err)
		return nil, err
	}

	link.ImageURL = manager.media.PublicURL(manager.mediaBucket, objectPath)
	manager.mutated()

	if err := manager.db.UpdateLink(ctx, linkID, models.LinkPatch{models.LinkFieldImageURL: link.ImageURL}); err != nil {
		manager.reportError(err)
		return nil, err
	}

	return link, nil
}

func (manager *Manager) find(linkID string) *models.Link {
	for _, link := range manager.links {
		if link.ID == linkID {
			return link
		}
	}

	return nil
}

func (manager *Manager) mutated() {
	if manager.onMutate != nil {
		manager.onMutate()
	}
}

func (manager *Manager) reportError(err error) {
	if manager.onError != nil {
		manager.onError(err)
	}
}
