// Package mockstorage provides a testify-based mock implementation
// of the storage interface. It is used for unit testing HTTP handlers
// and collaborators by simulating document store behavior.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/user"
)

// StorageMock is a testify mock that implements the full storage surface.
//
// Use it in tests to simulate database behavior.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks inserting a user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks a user lookup by id.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserByEmail mocks a user lookup by email.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// UpdateUser mocks replacing a user row.
func (m *StorageMock) UpdateUser(ctx context.Context, usr *user.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

// GetProfileByID mocks a profile lookup by owner id.
func (m *StorageMock) GetProfileByID(ctx context.Context, userID string) (*models.Profile, bool, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Bool(1), args.Error(2)
}

// GetProfileByUsername mocks a profile lookup by username.
func (m *StorageMock) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	args := m.Called(ctx, username)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Bool(1), args.Error(2)
}

// InsertProfile mocks storing a new profile.
func (m *StorageMock) InsertProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// UpdateProfile mocks applying a profile patch.
func (m *StorageMock) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error {
	args := m.Called(ctx, userID, patch)
	return args.Error(0)
}

// GetUserLinks mocks fetching a user's links.
func (m *StorageMock) GetUserLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	args := m.Called(ctx, userID)
	links, _ := args.Get(0).([]*models.Link)
	return links, args.Error(1)
}

// InsertLink mocks storing a new link.
func (m *StorageMock) InsertLink(ctx context.Context, link *models.Link) (string, error) {
	args := m.Called(ctx, link)
	return args.String(0), args.Error(1)
}

// UpdateLink mocks applying a link patch.
func (m *StorageMock) UpdateLink(ctx context.Context, linkID string, patch models.LinkPatch) error {
	args := m.Called(ctx, linkID, patch)
	return args.Error(0)
}

// DeleteLink mocks removing a link.
func (m *StorageMock) DeleteLink(ctx context.Context, linkID string) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

// GetNumberOfProfiles mocks the profile count.
func (m *StorageMock) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfLinks mocks the link count.
func (m *StorageMock) GetNumberOfLinks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks a health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the store.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
