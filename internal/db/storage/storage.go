// Package storage declares the document store collaborator contract
// shared by all backends.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/user"
)

// Storage is the full document store surface. Lookups report absence via
// the found flag, not an error; errors mean the store itself failed.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)

	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	UpdateUser(ctx context.Context, usr *user.User) error

	GetProfileByID(ctx context.Context, userID string) (*models.Profile, bool, error)

	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error)

	// InsertProfile returns models.ErrUsernameTaken when the username or
	// the owner already has a profile.
	InsertProfile(ctx context.Context, profile *models.Profile) error

	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error

	// GetUserLinks returns the user's links ordered by order index
	// ascending, ties broken by id.
	GetUserLinks(ctx context.Context, userID string) ([]*models.Link, error)

	// InsertLink stores the link and returns the assigned identifier.
	InsertLink(ctx context.Context, link *models.Link) (string, error)

	UpdateLink(ctx context.Context, linkID string, patch models.LinkPatch) error

	DeleteLink(ctx context.Context, linkID string) error

	GetNumberOfProfiles(ctx context.Context) (int64, error)

	GetNumberOfLinks(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
