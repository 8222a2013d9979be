// Package storage declares the full set of repository operations every backend provides.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/user"
)

type UserKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	GetUserByName(ctx context.Context, name string) (*user.User, bool, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

type ContentKeeper interface {
	InsertContent(ctx context.Context, content *models.Content) (string, error)
	GetUserContents(ctx context.Context, userID string) ([]models.Content, error)
	DeleteUserContent(ctx context.Context, userID, contentID string) (bool, error)
}

type ShareLinkKeeper interface {
	IsShareHashExists(ctx context.Context, hash string) (bool, error)
	InsertShareLink(ctx context.Context, link *models.ShareLink) error
	FindShareLinkByHash(ctx context.Context, hash string) (*models.ShareLink, bool, error)
	DeleteUserShareLinks(ctx context.Context, userID string) error
}

type StatsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)
	GetNumberOfContents(ctx context.Context) (int64, error)
	GetNumberOfShareLinks(ctx context.Context) (int64, error)
}

type Storage interface {
	UserKeeper
	ContentKeeper
	ShareLinkKeeper
	StatsKeeper

	Ping(ctx context.Context) error

	Close() error
}
