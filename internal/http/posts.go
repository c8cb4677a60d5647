package httpapp

import (
	"net/http"

	"github.com/alphabot-ai/quill/internal/blog"
	"github.com/alphabot-ai/quill/internal/model"

	"github.com/gorilla/mux"
)

// handleCreatePost godoc
//
//	@Summary		Create a post
//	@Description	Publish a post. The author is given as a username and stored as that user's id.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Param			post	body		model.CreatePostRequest	true	"Post data"
//	@Success		201		{object}	model.CreatePostResponse
//	@Failure		400		{object}	model.ErrorResponse	"Validation error"
//	@Failure		404		{object}	model.ErrorResponse	"Author not found"
//	@Router			/api/post [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	post, err := s.catalog.Create(r.Context(), blog.NewPost(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.CreatePostResponse{Msg: "Post created Successfully", Post: post})
}

// handleListPosts godoc
//
//	@Summary		List a user's posts
//	@Description	All posts written by the user, oldest first. Empty when there are none.
//	@Tags			Posts
//	@Produce		json
//	@Param			userId	path	string	true	"Author user ID"
//	@Success		200		{array}	model.Post
//	@Router			/api/post/{userId} [get]
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.catalog.ListByAuthor(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleGetPost godoc
//
//	@Summary		Get a post
//	@Description	A single post, only if it was written by the given user.
//	@Tags			Posts
//	@Produce		json
//	@Param			userId	path		string	true	"Author user ID"
//	@Param			postId	path		string	true	"Post ID"
//	@Success		200		{object}	model.Post
//	@Failure		404		{object}	model.ErrorResponse
//	@Router			/api/post/{userId}/{postId} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	post, err := s.catalog.GetOne(r.Context(), vars["userId"], vars["postId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleUpdatePost godoc
//
//	@Summary		Update a post
//	@Description	Merge title, description or content into one of the caller's posts. The author cannot change.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			post	body		model.PostUpdateRequest	true	"Target id and fields to change"
//	@Success		200		{object}	model.MessageResponse
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		401		{object}	model.ErrorResponse
//	@Failure		403		{object}	model.ErrorResponse	"Not your post"
//	@Failure		404		{object}	model.ErrorResponse
//	@Router			/api/post/update [put]
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req model.PostUpdateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	if err := s.catalog.Update(r.Context(), callerID(r), req.PostID, req.Patch()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Msg: "Record Updated...!"})
}

// handleDeletePost godoc
//
//	@Summary		Delete a post
//	@Description	Remove one of the caller's posts. Succeeds if the post is already gone. Comments are kept.
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			postId	path		string	true	"Post ID"
//	@Success		200		{object}	model.MessageResponse
//	@Failure		401		{object}	model.ErrorResponse
//	@Failure		403		{object}	model.ErrorResponse	"Not your post"
//	@Router			/api/post/{postId} [delete]
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), callerID(r), mux.Vars(r)["postId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Msg: "Record Deleted...!"})
}
