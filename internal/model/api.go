package model

// Request and response bodies of the JSON API. Field names follow the
// public wire format, including its mixed casing.

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type RegisterResponse struct {
	Response string `json:"response"`
	UserID   string `json:"userId"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Msg      string `json:"msg"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type VerifyRequest struct {
	Username string `json:"username"`
}

type VerifyResponse struct {
	Msg  string     `json:"msg"`
	User PublicUser `json:"User"`
}

// UserUpdateRequest names the target account and the fields to change.
type UserUpdateRequest struct {
	UserID    string  `json:"userId"`
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

func (r UserUpdateRequest) Patch() UserPatch {
	return UserPatch{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// CreatePostRequest carries the author as a username.
type CreatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Author      string `json:"author"`
}

type CreatePostResponse struct {
	Msg  string `json:"msg"`
	Post Post   `json:"Post"`
}

type PostUpdateRequest struct {
	PostID      string  `json:"postId"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
}

func (r PostUpdateRequest) Patch() PostPatch {
	return PostPatch{Title: r.Title, Description: r.Description, Content: r.Content}
}

// CreateCommentRequest carries the author as a username and the post as an id.
type CreateCommentRequest struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	Post    string `json:"post"`
}

type CreateCommentResponse struct {
	Msg     string  `json:"msg"`
	Comment Comment `json:"Comment"`
}

type CommentUpdateRequest struct {
	CommentID string  `json:"commentId"`
	Content   *string `json:"content,omitempty"`
}

func (r CommentUpdateRequest) Patch() CommentPatch {
	return CommentPatch{Content: r.Content}
}

type MessageResponse struct {
	Msg string `json:"msg"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}
