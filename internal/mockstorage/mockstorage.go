// Package mockstorage provides a testify-based mock implementation
// of the storage interfaces used by the service and router packages.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/user"
)

// StorageMock is a testify mock implementing storage.Storage.
type StorageMock struct {
	mock.Mock
}

func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

func (m *StorageMock) GetUserByName(ctx context.Context, name string) (*user.User, bool, error) {
	args := m.Called(ctx, name)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

func (m *StorageMock) InsertContent(ctx context.Context, content *models.Content) (string, error) {
	args := m.Called(ctx, content)
	return args.String(0), args.Error(1)
}

func (m *StorageMock) GetUserContents(ctx context.Context, userID string) ([]models.Content, error) {
	args := m.Called(ctx, userID)
	contents, _ := args.Get(0).([]models.Content)
	return contents, args.Error(1)
}

func (m *StorageMock) DeleteUserContent(ctx context.Context, userID, contentID string) (bool, error) {
	args := m.Called(ctx, userID, contentID)
	return args.Bool(0), args.Error(1)
}

func (m *StorageMock) IsShareHashExists(ctx context.Context, hash string) (bool, error) {
	args := m.Called(ctx, hash)
	return args.Bool(0), args.Error(1)
}

func (m *StorageMock) InsertShareLink(ctx context.Context, link *models.ShareLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *StorageMock) FindShareLinkByHash(ctx context.Context, hash string) (*models.ShareLink, bool, error) {
	args := m.Called(ctx, hash)
	link, _ := args.Get(0).(*models.ShareLink)
	return link, args.Bool(1), args.Error(2)
}

func (m *StorageMock) DeleteUserShareLinks(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StorageMock) GetNumberOfContents(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StorageMock) GetNumberOfShareLinks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
