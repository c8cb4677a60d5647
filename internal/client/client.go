// Package client provides a Go client for the Quill API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alphabot-ai/quill/internal/model"
)

// Client is a Quill API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	Username   string
}

// New creates a new Quill client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quill: %d %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of err if it is an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAuthenticated returns true if the client holds a token.
func (c *Client) IsAuthenticated() bool {
	return c.Token != ""
}

// Register creates a new account and returns its id.
func (c *Client) Register(req model.RegisterRequest) (string, error) {
	var resp model.RegisterResponse
	if err := c.call(http.MethodPost, "/api/user/register", req, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(username, password string) (string, error) {
	var resp model.LoginResponse
	req := model.LoginRequest{Username: username, Password: password}
	if err := c.call(http.MethodPost, "/api/user/login", req, http.StatusOK, &resp); err != nil {
		return "", err
	}
	c.Token = resp.Token
	c.Username = resp.Username
	return resp.Token, nil
}

func (c *Client) Verify(username string) (model.PublicUser, error) {
	var resp model.VerifyResponse
	err := c.call(http.MethodPost, "/api/user/verify", model.VerifyRequest{Username: username}, http.StatusOK, &resp)
	return resp.User, err
}

func (c *Client) GetUser(username string) (model.PublicUser, error) {
	var user model.PublicUser
	err := c.call(http.MethodGet, "/api/user/"+url.PathEscape(username), nil, http.StatusOK, &user)
	return user, err
}

func (c *Client) UpdateUser(req model.UserUpdateRequest) error {
	return c.call(http.MethodPut, "/api/user/update", req, http.StatusCreated, nil)
}

func (c *Client) DeleteUser(userID string) error {
	return c.call(http.MethodDelete, "/api/user/"+url.PathEscape(userID), nil, http.StatusCreated, nil)
}

func (c *Client) CreatePost(req model.CreatePostRequest) (model.Post, error) {
	var resp model.CreatePostResponse
	err := c.call(http.MethodPost, "/api/post", req, http.StatusCreated, &resp)
	return resp.Post, err
}

// ListPosts returns the posts written by userID.
func (c *Client) ListPosts(userID string) ([]model.Post, error) {
	var posts []model.Post
	err := c.call(http.MethodGet, "/api/post/"+url.PathEscape(userID), nil, http.StatusOK, &posts)
	return posts, err
}

func (c *Client) GetPost(userID, postID string) (model.Post, error) {
	var post model.Post
	path := "/api/post/" + url.PathEscape(userID) + "/" + url.PathEscape(postID)
	err := c.call(http.MethodGet, path, nil, http.StatusOK, &post)
	return post, err
}

func (c *Client) UpdatePost(req model.PostUpdateRequest) error {
	return c.call(http.MethodPut, "/api/post/update", req, http.StatusOK, nil)
}

func (c *Client) DeletePost(postID string) error {
	return c.call(http.MethodDelete, "/api/post/"+url.PathEscape(postID), nil, http.StatusOK, nil)
}

func (c *Client) CreateComment(req model.CreateCommentRequest) (model.Comment, error) {
	var resp model.CreateCommentResponse
	err := c.call(http.MethodPost, "/api/comment", req, http.StatusCreated, &resp)
	return resp.Comment, err
}

// ListComments returns the comments on postID.
func (c *Client) ListComments(postID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := c.call(http.MethodGet, "/api/comment/"+url.PathEscape(postID), nil, http.StatusOK, &comments)
	return comments, err
}

// GetComment fetches one comment by id. The route is shared with
// ListComments; the server decides by whether the id names a post.
func (c *Client) GetComment(commentID string) (model.Comment, error) {
	var comment model.Comment
	err := c.call(http.MethodGet, "/api/comment/"+url.PathEscape(commentID), nil, http.StatusOK, &comment)
	return comment, err
}

func (c *Client) UpdateComment(req model.CommentUpdateRequest) error {
	return c.call(http.MethodPut, "/api/comment/update", req, http.StatusOK, nil)
}

func (c *Client) DeleteComment(commentID string) error {
	return c.call(http.MethodDelete, "/api/comment/"+url.PathEscape(commentID), nil, http.StatusOK, nil)
}

// call sends body as JSON, checks for the expected status and decodes the
// response into out when out is non-nil.
func (c *Client) call(method, path string, body any, want int, out any) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		respBody, _ := io.ReadAll(resp.Body)
		var e model.ErrorResponse
		if json.Unmarshal(respBody, &e) != nil || e.Error == "" {
			e.Error = string(respBody)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doRequest performs an HTTP request, authenticated when a token is set.
func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

// TestHelper provides utilities for creating authenticated clients in tests.
type TestHelper struct {
	BaseURL string
}

// NewTestHelper creates a new test helper for the given base URL.
func NewTestHelper(baseURL string) *TestHelper {
	return &TestHelper{BaseURL: baseURL}
}

// CreateAuthenticatedClient registers name with a derived password and
// email, logs in, and returns the client with the new user's id.
func (h *TestHelper) CreateAuthenticatedClient(name string) (*Client, string, error) {
	c := New(h.BaseURL)
	password := name + "-password"
	id, err := c.Register(model.RegisterRequest{Username: name, Password: password, Email: name + "@example.com"})
	if err != nil {
		return nil, "", fmt.Errorf("register %s: %w", name, err)
	}
	if _, err := c.Login(name, password); err != nil {
		return nil, "", fmt.Errorf("login %s: %w", name, err)
	}
	return c, id, nil
}

// GetToken creates an account and returns an access token.
func (h *TestHelper) GetToken(name string) (string, error) {
	c, _, err := h.CreateAuthenticatedClient(name)
	if err != nil {
		return "", err
	}
	return c.Token, nil
}
