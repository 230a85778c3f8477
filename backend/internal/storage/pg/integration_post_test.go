package pg

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/itchan-dev/feed/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreatePost(t *testing.T, creator domain.UserId, title, content, postType string) domain.Post {
	t.Helper()
	post, err := storage.CreatePost(context.Background(), creator, domain.PostCreationData{
		Title:         title,
		Content:       content,
		PostType:      postType,
		AttachmentRef: uuid.NewString() + ".png",
	})
	require.NoError(t, err, "CreatePost should not return an error")
	return post
}

func allow(domain.Post) error { return nil }

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	user := mustSaveUser(t)

	post := mustCreatePost(t, user.Id, "First", "hello world", "news")
	assert.NotEmpty(t, post.Id)
	assert.Equal(t, user.Id, post.CreatorId)
	assert.False(t, post.CreatedAt.IsZero())

	got, err := storage.Post(ctx, post.Id)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)
	assert.Equal(t, post.AttachmentRef, got.AttachmentRef)

	reloaded, err := storage.User(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, []domain.PostId{post.Id}, reloaded.PostIds)

	t.Run("unknown creator", func(t *testing.T) {
		_, err := storage.CreatePost(ctx, domain.UserId(uuid.NewString()), domain.PostCreationData{Title: "t", Content: "c", AttachmentRef: "a"})
		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestPost_NotFound(t *testing.T) {
	ctx := context.Background()
	_, err := storage.Post(ctx, domain.PostId(uuid.NewString()))
	requireStatus(t, err, http.StatusNotFound)

	_, err = storage.Post(ctx, "123")
	requireStatus(t, err, http.StatusNotFound)
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	user := mustSaveUser(t)
	post := mustCreatePost(t, user.Id, "Before", "old content", "news")

	t.Run("keeps attachment when none given", func(t *testing.T) {
		updated, err := storage.UpdatePost(ctx, post.Id, domain.PostUpdateData{Title: "After", Content: "new content", PostType: "blog"}, allow)
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, "blog", updated.PostType)
		assert.Equal(t, post.AttachmentRef, updated.AttachmentRef)
		assert.True(t, updated.UpdatedAt.After(post.UpdatedAt))
	})

	t.Run("replaces attachment", func(t *testing.T) {
		updated, err := storage.UpdatePost(ctx, post.Id, domain.PostUpdateData{Title: "After", Content: "new content", AttachmentRef: "new.png"}, allow)
		require.NoError(t, err)
		assert.Equal(t, "new.png", updated.AttachmentRef)
	})

	t.Run("check sees current row and can abort", func(t *testing.T) {
		checkErr := errors.New("denied")
		var seen domain.Post
		_, err := storage.UpdatePost(ctx, post.Id, domain.PostUpdateData{Title: "Nope", Content: "nope nope"}, func(current domain.Post) error {
			seen = current
			return checkErr
		})
		assert.ErrorIs(t, err, checkErr)
		assert.Equal(t, "After", seen.Title)

		got, err := storage.Post(ctx, post.Id)
		require.NoError(t, err)
		assert.Equal(t, "After", got.Title, "aborted update must not change the row")
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := storage.UpdatePost(ctx, domain.PostId(uuid.NewString()), domain.PostUpdateData{Title: "x"}, allow)
		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	user := mustSaveUser(t)
	keep := mustCreatePost(t, user.Id, "Keep", "keep me", "news")
	gone := mustCreatePost(t, user.Id, "Gone", "delete me", "news")

	t.Run("aborted by check", func(t *testing.T) {
		checkErr := errors.New("release failed")
		err := storage.DeletePost(ctx, gone.Id, func(domain.Post) error { return checkErr })
		assert.ErrorIs(t, err, checkErr)

		_, err = storage.Post(ctx, gone.Id)
		assert.NoError(t, err, "post must survive an aborted delete")
	})

	t.Run("removes row and owner link", func(t *testing.T) {
		require.NoError(t, storage.DeletePost(ctx, gone.Id, allow))

		_, err := storage.Post(ctx, gone.Id)
		requireStatus(t, err, http.StatusNotFound)

		reloaded, err := storage.User(ctx, user.Id)
		require.NoError(t, err)
		assert.Equal(t, []domain.PostId{keep.Id}, reloaded.PostIds)
		assert.False(t, reloaded.HasPost(gone.Id))
	})

	t.Run("second delete is not found", func(t *testing.T) {
		err := storage.DeletePost(ctx, gone.Id, allow)
		requireStatus(t, err, http.StatusNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		err := storage.DeletePost(ctx, "garbage", allow)
		requireStatus(t, err, http.StatusNotFound)
	})
}
