package httpapp

import (
	"net/http"

	"github.com/alphabot-ai/quill/internal/blog"
	"github.com/alphabot-ai/quill/internal/model"

	"github.com/gorilla/mux"
)

func serviceInfo() model.ServiceInfo {
	return model.ServiceInfo{Name: "quill", Version: Version, Docs: "/swagger/index.html"}
}

// handleRegister godoc
//
//	@Summary		Register a user
//	@Description	Create an account. Usernames and emails are unique; the username is checked first.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			user	body		model.RegisterRequest	true	"Account data"
//	@Success		201		{object}	model.RegisterResponse
//	@Failure		400		{object}	model.ErrorResponse	"Validation error or duplicate username/email"
//	@Router			/api/user/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	id, err := s.directory.Register(r.Context(), blog.Registration(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.RegisterResponse{Response: "User Register Successfully", UserID: id})
}

// handleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchange a username and password for a bearer token valid for 24 hours.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		model.LoginRequest	true	"Credentials"
//	@Success		200			{object}	model.LoginResponse
//	@Failure		400			{object}	model.ErrorResponse	"Password does not match"
//	@Failure		404			{object}	model.ErrorResponse	"Unknown username"
//	@Router			/api/user/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	res, err := s.directory.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResponse{Msg: "Login Successful...!", Username: res.Username, Token: res.Token})
}

// handleVerifyUser godoc
//
//	@Summary		Check a username
//	@Description	Confirm that an account exists and return its public profile.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			user	body		model.VerifyRequest	true	"Username"
//	@Success		200		{object}	model.VerifyResponse
//	@Failure		404		{object}	model.ErrorResponse
//	@Router			/api/user/verify [post]
func (s *Server) handleVerifyUser(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	user, err := s.directory.Verify(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.VerifyResponse{Msg: "User Verified Successfully", User: user})
}

// handleGetUser godoc
//
//	@Summary		Get a user
//	@Description	Public profile of a user, with the ids of the posts they wrote. The password is never included.
//	@Tags			Users
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	model.PublicUser
//	@Failure		404			{object}	model.ErrorResponse
//	@Router			/api/user/{username} [get]
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.directory.Get(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUser godoc
//
//	@Summary		Update your account
//	@Description	Merge the given fields into the caller's account. A new password is re-hashed.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			user	body		model.UserUpdateRequest	true	"Target id and fields to change"
//	@Success		201		{object}	model.MessageResponse
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		401		{object}	model.ErrorResponse
//	@Failure		403		{object}	model.ErrorResponse	"Not your account"
//	@Failure		404		{object}	model.ErrorResponse
//	@Router			/api/user/update [put]
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req model.UserUpdateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	if err := s.directory.Update(r.Context(), callerID(r), req.UserID, req.Patch()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.MessageResponse{Msg: "Record Updated...!"})
}

// handleDeleteUser godoc
//
//	@Summary		Delete your account
//	@Description	Remove the caller's account. Posts and comments it wrote are kept.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			userId	path		string	true	"User ID"
//	@Success		201		{object}	model.MessageResponse
//	@Failure		401		{object}	model.ErrorResponse
//	@Failure		403		{object}	model.ErrorResponse	"Not your account"
//	@Failure		404		{object}	model.ErrorResponse
//	@Router			/api/user/{userId} [delete]
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.Delete(r.Context(), callerID(r), mux.Vars(r)["userId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.MessageResponse{Msg: "Record Deleted...!"})
}
