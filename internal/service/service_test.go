package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/brainly/internal/auth"
	"github.com/patric-chuzhbe/brainly/internal/db/memorystorage"
	"github.com/patric-chuzhbe/brainly/internal/mockstorage"
	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/user"
)

const testBcryptCost = 4

var shareHashPattern = regexp.MustCompile(`^[a-zA-Z0-9]{10}$`)

func newTestService(t *testing.T, options ...Option) (*Service, *auth.Auth) {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	theAuth := auth.New([]byte("service-test-secret"), time.Hour)
	options = append([]Option{WithBcryptCost(testBcryptCost)}, options...)

	return New(db, theAuth, options...), theAuth
}

// sequenceGenerator returns the given values in order, then repeats the last one.
func sequenceGenerator(values ...string) func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		value := values[i]
		if i < len(values)-1 {
			i++
		}
		return value, nil
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, theAuth := newTestService(t)

	require.NoError(t, svc.Register(ctx, "alice", "pw1", ""))

	token, err := svc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)

	userID, err := theAuth.GetUserIDFromToken(token)
	require.NoError(t, err)

	usr, found, err := svc.db.GetUserByName(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, usr.ID, userID)
	assert.NotEqual(t, "pw1", usr.PasswordHash)
}

func TestRegisterConflict(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(ctx, "alice", "pw1", ""))

	for _, password := range []string{"pw1", "something else"} {
		err := svc.Register(ctx, "alice", password, "")
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	}
}

func TestRegisterConflictDetectedByStorage(t *testing.T) {
	ctx := context.Background()
	db := new(mockstorage.StorageMock)
	svc := New(db, auth.New([]byte("secret"), time.Hour), WithBcryptCost(testBcryptCost))

	db.On("GetUserByName", mock.Anything, "alice").Return(nil, false, nil)
	db.On("CreateUser", mock.Anything, mock.AnythingOfType("*user.User")).Return("", models.ErrDuplicateUserName)

	err := svc.Register(ctx, "alice", "pw1", "")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	db.AssertExpectations(t)
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(ctx, "alice", "pw1", ""))

	_, wrongPasswordErr := svc.Authenticate(ctx, "alice", "pw2")
	_, unknownNameErr := svc.Authenticate(ctx, "bob", "pw1")

	assert.ErrorIs(t, wrongPasswordErr, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownNameErr, ErrInvalidCredentials)
	assert.Equal(t, wrongPasswordErr.Error(), unknownNameErr.Error())
}

func TestAuthenticateStorageFailure(t *testing.T) {
	db := new(mockstorage.StorageMock)
	svc := New(db, auth.New([]byte("secret"), time.Hour))

	db.On("GetUserByName", mock.Anything, "alice").Return(nil, false, errors.New("db error"))

	_, err := svc.Authenticate(context.Background(), "alice", "pw1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestContents(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	contentID, err := svc.AddContent(ctx, "user-1", models.AddContentRequest{
		Title: "t",
		Link:  "https://youtube.com/watch?v=x",
		Type:  models.ContentTypeYoutube,
	})
	require.NoError(t, err)

	contents, err := svc.GetUserContents(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, []string{}, contents[0].Tags)

	assert.ErrorIs(t, svc.DeleteContent(ctx, "user-1", "not-a-uuid"), ErrContentNotFound)
	assert.ErrorIs(t, svc.DeleteContent(ctx, "user-2", contentID), ErrContentNotFound)
	assert.NoError(t, svc.DeleteContent(ctx, "user-1", contentID))
	assert.ErrorIs(t, svc.DeleteContent(ctx, "user-1", contentID), ErrContentNotFound)
}

func TestEnableSharingTwice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(ctx, "alice", "pw1", ""))
	usr, _, err := svc.db.GetUserByName(ctx, "alice")
	require.NoError(t, err)

	first, err := svc.EnableSharing(ctx, usr.ID)
	require.NoError(t, err)
	assert.Regexp(t, shareHashPattern, first)

	second, err := svc.EnableSharing(ctx, usr.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = svc.ResolveShareLink(ctx, first)
	assert.ErrorIs(t, err, ErrShareLinkNotFound)

	shared, err := svc.ResolveShareLink(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "alice", shared.Username)

	require.NoError(t, svc.DisableSharing(ctx, usr.ID))
	require.NoError(t, svc.DisableSharing(ctx, usr.ID))

	_, err = svc.ResolveShareLink(ctx, second)
	assert.ErrorIs(t, err, ErrShareLinkNotFound)
}

func TestResolveShareLinkNeverCreated(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ResolveShareLink(context.Background(), "nothinghere")
	assert.ErrorIs(t, err, ErrShareLinkNotFound)
}

func TestEnableSharingRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, WithRandomStringGenerator(sequenceGenerator("taken00000", "taken00000", "free000000")))

	require.NoError(t, svc.db.InsertShareLink(ctx, &models.ShareLink{Hash: "taken00000", UserID: "someone"}))

	hash, err := svc.EnableSharing(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "free000000", hash)
}

func TestEnableSharingExhaustedRetries(t *testing.T) {
	db := new(mockstorage.StorageMock)
	svc := New(
		db,
		auth.New([]byte("secret"), time.Hour),
		WithShareHashMaxAttempts(3),
	)

	db.On("DeleteUserShareLinks", mock.Anything, "user-1").Return(nil)
	db.On("IsShareHashExists", mock.Anything, mock.AnythingOfType("string")).Return(true, nil)

	_, err := svc.EnableSharing(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrExhaustedRetries)
	db.AssertNumberOfCalls(t, "IsShareHashExists", 3)
	db.AssertNotCalled(t, "InsertShareLink", mock.Anything, mock.Anything)
}

func TestEnableSharingInsertRace(t *testing.T) {
	db := new(mockstorage.StorageMock)
	svc := New(
		db,
		auth.New([]byte("secret"), time.Hour),
		WithRandomStringGenerator(sequenceGenerator("raced00000", "winner0000")),
	)

	db.On("DeleteUserShareLinks", mock.Anything, "user-1").Return(nil)
	db.On("IsShareHashExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	db.On("InsertShareLink", mock.Anything, &models.ShareLink{Hash: "raced00000", UserID: "user-1"}).
		Return(models.ErrDuplicateShareHash).Once()
	db.On("InsertShareLink", mock.Anything, &models.ShareLink{Hash: "winner0000", UserID: "user-1"}).
		Return(nil).Once()

	hash, err := svc.EnableSharing(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "winner0000", hash)
	db.AssertExpectations(t)
}

func TestResolveShareLinkOwnerMissing(t *testing.T) {
	db := new(mockstorage.StorageMock)
	svc := New(db, auth.New([]byte("secret"), time.Hour))

	db.On("FindShareLinkByHash", mock.Anything, "orphan0000").
		Return(&models.ShareLink{Hash: "orphan0000", UserID: "gone"}, true, nil)
	db.On("GetUserByID", mock.Anything, "gone").Return((*user.User)(nil), false, nil)

	_, err := svc.ResolveShareLink(context.Background(), "orphan0000")
	assert.ErrorIs(t, err, ErrShareLinkNotFound)
}

func TestGenerateRandomString(t *testing.T) {
	value, err := generateRandomString(10)
	require.NoError(t, err)
	assert.Regexp(t, shareHashPattern, value)
}

func TestGetInternalStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(ctx, "alice", "pw1", ""))
	usr, _, err := svc.db.GetUserByName(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.EnableSharing(ctx, usr.ID)
	require.NoError(t, err)

	stats, err := svc.GetInternalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.InternalStatsResponse{Users: 1, Contents: 0, ShareLinks: 1}, stats)
}
