package httpapp

import (
	"net/http"

	"github.com/alphabot-ai/quill/internal/blog"
	"github.com/alphabot-ai/quill/internal/model"

	"github.com/gorilla/mux"
)

// handleCreateComment godoc
//
//	@Summary		Comment on a post
//	@Description	Attach a comment to a post. The author is a username, the post a post id.
//	@Tags			Comments
//	@Accept			json
//	@Produce		json
//	@Param			comment	body		model.CreateCommentRequest	true	"Comment data"
//	@Success		201		{object}	model.CreateCommentResponse
//	@Failure		400		{object}	model.ErrorResponse	"Validation error"
//	@Failure		404		{object}	model.ErrorResponse	"User or post not found"
//	@Router			/api/comment [post]
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCommentRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	comment, err := s.ledger.Create(r.Context(), blog.NewComment(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.CreateCommentResponse{Msg: "Comment created Successfully", Comment: comment})
}

// handleGetComments godoc
//
//	@Summary		Get comments
//	@Description	When id is a post id, list the post's comments oldest first. Otherwise return the comment with that id.
//	@Tags			Comments
//	@Produce		json
//	@Param			id	path		string	true	"Post ID or comment ID"
//	@Success		200	{array}		model.Comment
//	@Failure		404	{object}	model.ErrorResponse
//	@Router			/api/comment/{id} [get]
func (s *Server) handleGetComments(w http.ResponseWriter, r *http.Request) {
	found, err := s.ledger.Find(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if found.IsPost {
		writeJSON(w, http.StatusOK, found.Comments)
		return
	}
	writeJSON(w, http.StatusOK, found.Comment)
}

// handleUpdateComment godoc
//
//	@Summary		Update a comment
//	@Description	Replace the content of one of the caller's comments.
//	@Tags			Comments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			comment	body		model.CommentUpdateRequest	true	"Target id and new content"
//	@Success		200		{object}	model.MessageResponse
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		401		{object}	model.ErrorResponse
//	@Failure		403		{object}	model.ErrorResponse	"Not your comment"
//	@Failure		404		{object}	model.ErrorResponse
//	@Router			/api/comment/update [put]
func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var req model.CommentUpdateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	if err := s.ledger.Update(r.Context(), callerID(r), req.CommentID, req.Patch()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Msg: "Record Updated...!"})
}

// handleDeleteComment godoc
//
//	@Summary		Delete a comment
//	@Description	Remove one of the caller's comments. Succeeds if the comment is already gone.
//	@Tags			Comments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			commentId	path		string	true	"Comment ID"
//	@Success		200			{object}	model.MessageResponse
//	@Failure		401			{object}	model.ErrorResponse
//	@Failure		403			{object}	model.ErrorResponse	"Not your comment"
//	@Router			/api/comment/{commentId} [delete]
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Delete(r.Context(), callerID(r), mux.Vars(r)["commentId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Msg: "Record Deleted...!"})
}
