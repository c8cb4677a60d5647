package blog

import (
	"context"
	"strings"

	"github.com/alphabot-ai/quill/internal/model"
	"github.com/alphabot-ai/quill/internal/store"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/pkg/errors"
)

// Ledger owns comments on posts.
type Ledger struct {
	users    store.UserStore
	posts    store.PostStore
	comments store.CommentStore
}

func NewLedger(users store.UserStore, posts store.PostStore, comments store.CommentStore) *Ledger {
	return &Ledger{users: users, posts: posts, comments: comments}
}

// NewComment is a comment submission. Author is a username, Post a post id.
type NewComment struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	Post    string `json:"post"`
}

func (c NewComment) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Content, validation.Required),
		validation.Field(&c.Author, validation.Required),
		validation.Field(&c.Post, validation.Required),
	)
}

// Create resolves the author before the post; when both are missing the
// author is reported.
func (l *Ledger) Create(ctx context.Context, in NewComment) (model.Comment, error) {
	in.Author = strings.TrimSpace(in.Author)
	if err := in.Validate(); err != nil {
		return model.Comment{}, invalid(err)
	}
	author, err := l.users.GetUserByUsername(ctx, in.Author)
	if errors.Is(err, store.ErrNotFound) {
		return model.Comment{}, newError(KindNotFound, "User not found")
	}
	if err != nil {
		return model.Comment{}, internal(err, "lookup author")
	}
	post, err := l.posts.GetPost(ctx, in.Post)
	if errors.Is(err, store.ErrNotFound) {
		return model.Comment{}, newError(KindNotFound, "Post not found")
	}
	if err != nil {
		return model.Comment{}, internal(err, "lookup post")
	}
	comment := model.Comment{Content: in.Content, Author: author.ID, Post: post.ID}
	if _, err := l.comments.CreateComment(ctx, &comment); err != nil {
		return model.Comment{}, internal(err, "create comment")
	}
	return comment, nil
}

// ListByPost returns the post's comments oldest first, or an empty list.
func (l *Ledger) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, newError(KindInvalid, "Invalid Post")
	}
	comments, err := l.comments.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, internal(err, "list comments")
	}
	return comments, nil
}

func (l *Ledger) GetOne(ctx context.Context, commentID string) (model.Comment, error) {
	if strings.TrimSpace(commentID) == "" {
		return model.Comment{}, newError(KindInvalid, "Invalid Comment")
	}
	comment, err := l.comments.GetComment(ctx, commentID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Comment{}, newError(KindNotFound, "Couldn't Find the Comment")
	}
	if err != nil {
		return model.Comment{}, internal(err, "get comment")
	}
	return comment, nil
}

// Lookup is the result of Find: either the comments of a post or a single
// comment.
type Lookup struct {
	IsPost   bool
	Comments []model.Comment
	Comment  model.Comment
}

// Find treats id first as a post id and lists its comments; failing that it
// looks id up as a comment.
func (l *Ledger) Find(ctx context.Context, id string) (Lookup, error) {
	if strings.TrimSpace(id) == "" {
		return Lookup{}, newError(KindInvalid, "Invalid Post")
	}
	_, err := l.posts.GetPost(ctx, id)
	switch {
	case err == nil:
		comments, err := l.ListByPost(ctx, id)
		if err != nil {
			return Lookup{}, err
		}
		return Lookup{IsPost: true, Comments: comments}, nil
	case !errors.Is(err, store.ErrNotFound):
		return Lookup{}, internal(err, "lookup post")
	}
	comment, err := l.GetOne(ctx, id)
	if err != nil {
		return Lookup{}, err
	}
	return Lookup{Comment: comment}, nil
}

func (l *Ledger) Update(ctx context.Context, callerID, commentID string, patch model.CommentPatch) error {
	if commentID == "" {
		return newError(KindInvalid, "commentId: cannot be blank")
	}
	if err := validation.Validate(patch.Content, validation.NilOrNotEmpty); err != nil {
		return newError(KindInvalid, "content: "+err.Error())
	}
	comment, err := l.owned(ctx, callerID, commentID)
	if err != nil {
		return err
	}
	if err := l.comments.UpdateComment(ctx, comment.ID, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(KindNotFound, "Comment Not Found...!")
		}
		return internal(err, "update comment")
	}
	return nil
}

// Delete succeeds when the comment is already gone.
func (l *Ledger) Delete(ctx context.Context, callerID, commentID string) error {
	if commentID == "" {
		return newError(KindInvalid, "commentId: cannot be blank")
	}
	comment, err := l.owned(ctx, callerID, commentID)
	if KindOf(err) == KindNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err := l.comments.DeleteComment(ctx, comment.ID); err != nil {
		return internal(err, "delete comment")
	}
	return nil
}

func (l *Ledger) owned(ctx context.Context, callerID, commentID string) (model.Comment, error) {
	comment, err := l.comments.GetComment(ctx, commentID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Comment{}, newError(KindNotFound, "Comment Not Found...!")
	}
	if err != nil {
		return model.Comment{}, internal(err, "get comment")
	}
	if comment.Author != callerID {
		return model.Comment{}, newError(KindForbidden, "You can only change your own comments")
	}
	return comment, nil
}
