package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/brainly/internal/auth"
	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	GetUserByName(ctx context.Context, name string) (*user.User, bool, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

type contentKeeper interface {
	InsertContent(ctx context.Context, content *models.Content) (string, error)
	GetUserContents(ctx context.Context, userID string) ([]models.Content, error)
	DeleteUserContent(ctx context.Context, userID, contentID string) (bool, error)
}

type shareLinkKeeper interface {
	IsShareHashExists(ctx context.Context, hash string) (bool, error)
	InsertShareLink(ctx context.Context, link *models.ShareLink) error
	FindShareLinkByHash(ctx context.Context, hash string) (*models.ShareLink, bool, error)
	DeleteUserShareLinks(ctx context.Context, userID string) error
}

type statsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)
	GetNumberOfContents(ctx context.Context) (int64, error)
	GetNumberOfShareLinks(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	contentKeeper
	shareLinkKeeper
	statsKeeper
	pinger
}

type tokenIssuer interface {
	BuildJWTString(userID string) (string, error)
}

var (
	// ErrUserAlreadyExists is the Conflict outcome of Register.
	ErrUserAlreadyExists = errors.New("user already exists with this name")

	// ErrInvalidCredentials is returned for an unknown name and for a wrong password alike.
	ErrInvalidCredentials = errors.New("incorrect name or password")

	ErrContentNotFound = errors.New("content not found")

	ErrShareLinkNotFound = errors.New("share link not found")

	// ErrExhaustedRetries is returned when no unused share hash was found within the attempt limit.
	ErrExhaustedRetries = errors.New("the number of attempts to generate a unique share hash has been exceeded")
)

const (
	defaultBcryptCost           = 10
	defaultShareHashLength      = 10
	defaultShareHashMaxAttempts = 10
)

type Service struct {
	db     storage
	tokens tokenIssuer

	bcryptCost           int
	shareHashLength      int
	shareHashMaxAttempts int
	randomString         func(length int) (string, error)
}

// Option tunes a Service.
type Option func(*Service)

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func WithShareHashLength(length int) Option {
	return func(s *Service) {
		s.shareHashLength = length
	}
}

func WithShareHashMaxAttempts(attempts int) Option {
	return func(s *Service) {
		s.shareHashMaxAttempts = attempts
	}
}

// WithRandomStringGenerator replaces the share hash source. Tests use it to force collisions.
func WithRandomStringGenerator(generator func(length int) (string, error)) Option {
	return func(s *Service) {
		s.randomString = generator
	}
}

func New(db storage, tokens tokenIssuer, options ...Option) *Service {
	s := &Service{
		db:                   db,
		tokens:               tokens,
		bcryptCost:           defaultBcryptCost,
		shareHashLength:      defaultShareHashLength,
		shareHashMaxAttempts: defaultShareHashMaxAttempts,
		randomString:         generateRandomString,
	}
	for _, option := range options {
		option(s)
	}

	return s
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, password, email string) error {
	_, found, err := s.db.GetUserByName(ctx, name)
	if err != nil {
		return fmt.Errorf("in internal/service/service.go/Register(): error while `s.db.GetUserByName()` calling: %w", err)
	}
	if found {
		return ErrUserAlreadyExists
	}

	passwordHash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("in internal/service/service.go/Register(): error while `auth.HashPassword()` calling: %w", err)
	}

	_, err = s.db.CreateUser(ctx, &user.User{
		Name:         name,
		PasswordHash: passwordHash,
		Email:        email,
	})
	if errors.Is(err, models.ErrDuplicateUserName) {
		return ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("in internal/service/service.go/Register(): error while `s.db.CreateUser()` calling: %w", err)
	}

	return nil
}

// Authenticate checks the credentials and issues a token for the user.
func (s *Service) Authenticate(ctx context.Context, name, password string) (string, error) {
	usr, found, err := s.db.GetUserByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("in internal/service/service.go/Authenticate(): error while `s.db.GetUserByName()` calling: %w", err)
	}
	if !found || usr.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(usr.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("in internal/service/service.go/Authenticate(): error while `auth.ComparePassword()` calling: %w", err)
	}
	if !match {
		return "", ErrInvalidCredentials
	}

	return s.tokens.BuildJWTString(usr.ID)
}

func (s *Service) AddContent(ctx context.Context, userID string, request models.AddContentRequest) (string, error) {
	return s.db.InsertContent(ctx, &models.Content{
		Type:   request.Type,
		Title:  request.Title,
		Link:   request.Link,
		UserID: userID,
		Tags:   []string{},
	})
}

func (s *Service) GetUserContents(ctx context.Context, userID string) ([]models.Content, error) {
	return s.db.GetUserContents(ctx, userID)
}

// DeleteContent removes one of the user's contents. Foreign, absent and malformed IDs are all "not found".
func (s *Service) DeleteContent(ctx context.Context, userID, contentID string) error {
	if _, err := uuid.Parse(contentID); err != nil {
		return ErrContentNotFound
	}

	deleted, err := s.db.DeleteUserContent(ctx, userID, contentID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrContentNotFound
	}

	return nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetInternalStats returns the number of users, contents and share links.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	contents, err := s.db.GetNumberOfContents(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	shareLinks, err := s.db.GetNumberOfShareLinks(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		Users:      users,
		Contents:   contents,
		ShareLinks: shareLinks,
	}, nil
}
