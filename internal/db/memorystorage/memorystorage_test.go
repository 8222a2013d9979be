package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/brainly/internal/db/storage"
	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/user"
)

var _ storage.Storage = (*MemoryStorage)(nil)

func Test(t *testing.T) {
	t.Run("The base memorystorage package test", func(t *testing.T) {
		ctx := context.Background()

		theStorage, err := New()
		require.NoError(t, err, "The memorystorage.New() should not return error")

		userID, err := theStorage.CreateUser(ctx, &user.User{Name: "alice"})
		require.NoError(t, err)

		_, err = theStorage.InsertContent(ctx, &models.Content{Type: models.ContentTypeTwitter, Title: "t", Link: "https://x.com/a/status/1", UserID: userID})
		require.NoError(t, err)
		_, err = theStorage.InsertContent(ctx, &models.Content{Type: models.ContentTypeYoutube, Title: "other", Link: "https://youtube.com/watch?v=y", UserID: "nobody"})
		require.NoError(t, err)

		contents, err := theStorage.GetUserContents(ctx, userID)
		require.NoError(t, err)
		require.Len(t, contents, 1)
		assert.Equal(t, "t", contents[0].Title)

		count, err := theStorage.GetNumberOfContents(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		assert.NoError(t, theStorage.Ping(ctx), "The memorystorage.Ping() should not return error")
		assert.NoError(t, theStorage.Close(), "The memorystorage.Close() should not return error")
	})
}
