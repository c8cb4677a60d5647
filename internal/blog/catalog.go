package blog

import (
	"context"
	"strings"

	"github.com/alphabot-ai/quill/internal/model"
	"github.com/alphabot-ai/quill/internal/store"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/pkg/errors"
)

// Catalog owns posts. A post's author is resolved from a username once,
// at creation, and never changes afterwards.
type Catalog struct {
	users store.UserStore
	posts store.PostStore
}

func NewCatalog(users store.UserStore, posts store.PostStore) *Catalog {
	return &Catalog{users: users, posts: posts}
}

// NewPost is a post submission. Author is the username of the writer.
type NewPost struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Author      string `json:"author"`
}

func (p NewPost) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.Content, validation.Required),
		validation.Field(&p.Author, validation.Required),
	)
}

func (c *Catalog) Create(ctx context.Context, in NewPost) (model.Post, error) {
	in.Author = strings.TrimSpace(in.Author)
	if err := in.Validate(); err != nil {
		return model.Post{}, invalid(err)
	}
	author, err := c.users.GetUserByUsername(ctx, in.Author)
	if errors.Is(err, store.ErrNotFound) {
		return model.Post{}, newError(KindNotFound, "Author not found")
	}
	if err != nil {
		return model.Post{}, internal(err, "lookup author")
	}
	post := model.Post{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Author:      author.ID,
	}
	if _, err := c.posts.CreatePost(ctx, &post); err != nil {
		return model.Post{}, internal(err, "create post")
	}
	return post, nil
}

// ListByAuthor returns the author's posts oldest first. An author with no
// posts, or an unknown author, yields an empty list.
func (c *Catalog) ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, newError(KindInvalid, "Invalid Username")
	}
	posts, err := c.posts.ListPostsByAuthor(ctx, authorID)
	if err != nil {
		return nil, internal(err, "list posts")
	}
	return posts, nil
}

// GetOne returns the post only when it exists and belongs to authorID.
func (c *Catalog) GetOne(ctx context.Context, authorID, postID string) (model.Post, error) {
	if strings.TrimSpace(authorID) == "" {
		return model.Post{}, newError(KindInvalid, "Invalid Username")
	}
	post, err := c.posts.GetPost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && post.Author != authorID) {
		return model.Post{}, newError(KindNotFound, "Couldn't Find the User/Post")
	}
	if err != nil {
		return model.Post{}, internal(err, "get post")
	}
	return post, nil
}

func (c *Catalog) Update(ctx context.Context, callerID, postID string, patch model.PostPatch) error {
	if postID == "" {
		return newError(KindInvalid, "postId: cannot be blank")
	}
	if err := (validation.Errors{
		"title":       validation.Validate(patch.Title, validation.NilOrNotEmpty),
		"description": validation.Validate(patch.Description, validation.NilOrNotEmpty),
		"content":     validation.Validate(patch.Content, validation.NilOrNotEmpty),
	}).Filter(); err != nil {
		return invalid(err)
	}
	post, err := c.owned(ctx, callerID, postID)
	if err != nil {
		return err
	}
	if err := c.posts.UpdatePost(ctx, post.ID, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(KindNotFound, "Post Not Found...!")
		}
		return internal(err, "update post")
	}
	return nil
}

// Delete succeeds when the post is already gone. Comments on the post are
// kept.
func (c *Catalog) Delete(ctx context.Context, callerID, postID string) error {
	if postID == "" {
		return newError(KindInvalid, "postId: cannot be blank")
	}
	post, err := c.owned(ctx, callerID, postID)
	if KindOf(err) == KindNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.posts.DeletePost(ctx, post.ID); err != nil {
		return internal(err, "delete post")
	}
	return nil
}

func (c *Catalog) owned(ctx context.Context, callerID, postID string) (model.Post, error) {
	post, err := c.posts.GetPost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Post{}, newError(KindNotFound, "Post Not Found...!")
	}
	if err != nil {
		return model.Post{}, internal(err, "get post")
	}
	if post.Author != callerID {
		return model.Post{}, newError(KindForbidden, "You can only change your own posts")
	}
	return post, nil
}
