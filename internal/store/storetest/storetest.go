// Package storetest holds behavioural tests shared by every store backend.
package storetest

import (
	"context"
	"testing"

	"github.com/alphabot-ai/quill/internal/model"
	"github.com/alphabot-ai/quill/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run executes the suite. newStore must return an empty store for each call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("UserLifecycle", func(t *testing.T) { testUserLifecycle(t, newStore(t)) })
	t.Run("UserUniqueness", func(t *testing.T) { testUserUniqueness(t, newStore(t)) })
	t.Run("PostLifecycle", func(t *testing.T) { testPostLifecycle(t, newStore(t)) })
	t.Run("CommentLifecycle", func(t *testing.T) { testCommentLifecycle(t, newStore(t)) })
}

func ptr(s string) *string { return &s }

func testUserLifecycle(t *testing.T, st store.Store) {
	ctx := context.Background()

	user := model.User{Username: "alice", Email: "a@x.com", Password: "hash", FirstName: "Alice"}
	id, err := st.CreateUser(ctx, &user)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, user.ID)

	got, err := st.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	byName, err := st.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	byEmail, err := st.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	_, err = st.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.UpdateUser(ctx, id, model.UserPatch{LastName: ptr("Liddell")}))
	got, err = st.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Liddell", got.LastName)
	assert.Equal(t, "Alice", got.FirstName)

	require.NoError(t, st.UpdateUser(ctx, id, model.UserPatch{}))
	assert.ErrorIs(t, st.UpdateUser(ctx, "missing", model.UserPatch{FirstName: ptr("x")}), store.ErrNotFound)
	assert.ErrorIs(t, st.UpdateUser(ctx, "missing", model.UserPatch{}), store.ErrNotFound)

	require.NoError(t, st.DeleteUser(ctx, id))
	assert.ErrorIs(t, st.DeleteUser(ctx, id), store.ErrNotFound)
	_, err = st.GetUser(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUserUniqueness(t *testing.T, st store.Store) {
	ctx := context.Background()

	_, err := st.CreateUser(ctx, &model.User{Username: "alice", Email: "a@x.com", Password: "h"})
	require.NoError(t, err)

	_, err = st.CreateUser(ctx, &model.User{Username: "alice", Email: "other@x.com", Password: "h"})
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)

	_, err = st.CreateUser(ctx, &model.User{Username: "bob", Email: "a@x.com", Password: "h"})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	bobID, err := st.CreateUser(ctx, &model.User{Username: "bob", Email: "b@x.com", Password: "h"})
	require.NoError(t, err)
	assert.ErrorIs(t, st.UpdateUser(ctx, bobID, model.UserPatch{Username: ptr("alice")}), store.ErrDuplicateUsername)
	assert.ErrorIs(t, st.UpdateUser(ctx, bobID, model.UserPatch{Email: ptr("a@x.com")}), store.ErrDuplicateEmail)
}

func testPostLifecycle(t *testing.T, st store.Store) {
	ctx := context.Background()

	posts, err := st.ListPostsByAuthor(ctx, "author-1")
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	first := model.Post{Title: "T1", Description: "D1", Content: "C1", Author: "author-1"}
	firstID, err := st.CreatePost(ctx, &first)
	require.NoError(t, err)
	second := model.Post{Title: "T2", Description: "D2", Content: "C2", Author: "author-1"}
	_, err = st.CreatePost(ctx, &second)
	require.NoError(t, err)
	_, err = st.CreatePost(ctx, &model.Post{Title: "T3", Description: "D3", Content: "C3", Author: "author-2"})
	require.NoError(t, err)

	posts, err = st.ListPostsByAuthor(ctx, "author-1")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, first, posts[0])
	assert.Equal(t, second, posts[1])

	require.NoError(t, st.UpdatePost(ctx, firstID, model.PostPatch{Title: ptr("T1b")}))
	got, err := st.GetPost(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "T1b", got.Title)
	assert.Equal(t, "D1", got.Description)
	assert.ErrorIs(t, st.UpdatePost(ctx, "missing", model.PostPatch{Title: ptr("x")}), store.ErrNotFound)

	require.NoError(t, st.DeletePost(ctx, firstID))
	require.NoError(t, st.DeletePost(ctx, firstID))
	_, err = st.GetPost(ctx, firstID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testCommentLifecycle(t *testing.T, st store.Store) {
	ctx := context.Background()

	comments, err := st.ListCommentsByPost(ctx, "post-1")
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	c := model.Comment{Content: "nice", Author: "author-1", Post: "post-1"}
	id, err := st.CreateComment(ctx, &c)
	require.NoError(t, err)
	_, err = st.CreateComment(ctx, &model.Comment{Content: "other", Author: "author-1", Post: "post-2"})
	require.NoError(t, err)

	comments, err = st.ListCommentsByPost(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, c, comments[0])

	require.NoError(t, st.UpdateComment(ctx, id, model.CommentPatch{Content: ptr("nicer")}))
	got, err := st.GetComment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "nicer", got.Content)
	assert.ErrorIs(t, st.UpdateComment(ctx, "missing", model.CommentPatch{Content: ptr("x")}), store.ErrNotFound)

	require.NoError(t, st.DeleteComment(ctx, id))
	require.NoError(t, st.DeleteComment(ctx, id))
	_, err = st.GetComment(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
