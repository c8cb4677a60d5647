package store

import (
	"context"
	"errors"

	"github.com/alphabot-ai/quill/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

type Store interface {
	UserStore
	PostStore
	CommentStore
	Ping(ctx context.Context) error
	Close() error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) (string, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) error
	DeleteUser(ctx context.Context, id string) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) (string, error)
	GetPost(ctx context.Context, id string) (model.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]model.Post, error)
	UpdatePost(ctx context.Context, id string, patch model.PostPatch) error
	// DeletePost succeeds whether or not the post exists.
	DeletePost(ctx context.Context, id string) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) (string, error)
	GetComment(ctx context.Context, id string) (model.Comment, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error)
	UpdateComment(ctx context.Context, id string, patch model.CommentPatch) error
	// DeleteComment succeeds whether or not the comment exists.
	DeleteComment(ctx context.Context, id string) error
}
