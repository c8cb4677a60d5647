package httpapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alphabot-ai/quill/internal/auth"
	"github.com/alphabot-ai/quill/internal/config"
	"github.com/alphabot-ai/quill/internal/model"
	"github.com/alphabot-ai/quill/internal/store/sqlite"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClient struct {
	server *httptest.Server
	client *http.Client
	issuer *auth.Issuer
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		BcryptCost:  bcrypt.MinCost,
		CORSOrigins: []string{"*"},
	}
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	cfg := testConfig()
	dsnName := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnName))
	require.NoError(t, err)
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	require.NoError(t, err)
	server, err := NewServer(st, issuer, cfg, zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		_ = st.Close()
	})
	return &testClient{server: ts, client: ts.Client(), issuer: issuer}
}

func (c *testClient) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (c *testClient) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return c.do(t, http.MethodPost, path, body, "")
}

func (c *testClient) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return c.do(t, http.MethodGet, path, nil, "")
}

func decodeJSON[T any](t *testing.T, resp *http.Response, out *T) {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("json decode: %v (body %s)", err, string(body))
	}
}

func expectStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected %d, got %d: %s", status, resp.StatusCode, string(body))
	}
}

func expectError(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()
	expectStatus(t, resp, status)
	var body model.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, message, body.Error)
}

// registerAndLogin creates an account and returns its id and a token.
func registerAndLogin(t *testing.T, tc *testClient, username string) (string, string) {
	t.Helper()
	resp := tc.postJSON(t, "/api/user/register", model.RegisterRequest{
		Username: username,
		Password: "pw-" + username,
		Email:    username + "@x.com",
	})
	expectStatus(t, resp, http.StatusCreated)
	var reg model.RegisterResponse
	decodeJSON(t, resp, &reg)

	resp = tc.postJSON(t, "/api/user/login", model.LoginRequest{Username: username, Password: "pw-" + username})
	expectStatus(t, resp, http.StatusOK)
	var login model.LoginResponse
	decodeJSON(t, resp, &login)
	return reg.UserID, login.Token
}

func createPost(t *testing.T, tc *testClient, author, title string) model.Post {
	t.Helper()
	resp := tc.postJSON(t, "/api/post", model.CreatePostRequest{
		Title: title, Description: "about " + title, Content: "https://img.example/" + title, Author: author,
	})
	expectStatus(t, resp, http.StatusCreated)
	var created model.CreatePostResponse
	decodeJSON(t, resp, &created)
	return created.Post
}

func TestAliceScenario(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.postJSON(t, "/api/user/register", model.RegisterRequest{
		Username: "alice", Password: "pw1", Email: "a@x.com",
	})
	expectStatus(t, resp, http.StatusCreated)
	var reg model.RegisterResponse
	decodeJSON(t, resp, &reg)
	assert.Equal(t, "User Register Successfully", reg.Response)
	require.NotEmpty(t, reg.UserID)

	resp = tc.postJSON(t, "/api/user/login", model.LoginRequest{Username: "alice", Password: "pw1"})
	expectStatus(t, resp, http.StatusOK)
	var login model.LoginResponse
	decodeJSON(t, resp, &login)
	assert.Equal(t, "Login Successful...!", login.Msg)
	assert.Equal(t, "alice", login.Username)
	claims, err := tc.issuer.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: reg.UserID, Username: "alice"}, claims)

	resp = tc.postJSON(t, "/api/post", model.CreatePostRequest{
		Title: "T", Description: "D", Content: "https://img.example/1", Author: "alice",
	})
	expectStatus(t, resp, http.StatusCreated)
	var created model.CreatePostResponse
	decodeJSON(t, resp, &created)
	assert.Equal(t, "Post created Successfully", created.Msg)
	assert.Equal(t, reg.UserID, created.Post.Author)
	postID := created.Post.ID

	resp = tc.get(t, "/api/comment/"+postID)
	expectStatus(t, resp, http.StatusOK)
	var none []model.Comment
	decodeJSON(t, resp, &none)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	resp = tc.postJSON(t, "/api/comment", model.CreateCommentRequest{Content: "nice", Author: "alice", Post: postID})
	expectStatus(t, resp, http.StatusCreated)
	var comment model.CreateCommentResponse
	decodeJSON(t, resp, &comment)
	assert.Equal(t, "Comment created Successfully", comment.Msg)
	assert.Equal(t, reg.UserID, comment.Comment.Author)
	assert.Equal(t, postID, comment.Comment.Post)

	resp = tc.get(t, "/api/comment/"+postID)
	expectStatus(t, resp, http.StatusOK)
	var comments []model.Comment
	decodeJSON(t, resp, &comments)
	assert.Equal(t, []model.Comment{comment.Comment}, comments)

	resp = tc.get(t, "/api/user/alice")
	expectStatus(t, resp, http.StatusOK)
	var raw map[string]any
	decodeJSON(t, resp, &raw)
	assert.NotContains(t, raw, "password")
	assert.Equal(t, "alice", raw["username"])
	assert.Equal(t, []any{postID}, raw["posts"])

	resp = tc.do(t, http.MethodPut, "/api/post/update", model.PostUpdateRequest{PostID: postID, Title: ptr("T2")}, "")
	expectError(t, resp, http.StatusUnauthorized, "Authentication Failed!")

	resp = tc.do(t, http.MethodPut, "/api/post/update", model.PostUpdateRequest{PostID: postID, Title: ptr("T2")}, login.Token)
	expectStatus(t, resp, http.StatusOK)
	var msg model.MessageResponse
	decodeJSON(t, resp, &msg)
	assert.Equal(t, "Record Updated...!", msg.Msg)

	resp = tc.get(t, "/api/post/"+reg.UserID+"/"+postID)
	expectStatus(t, resp, http.StatusOK)
	var post model.Post
	decodeJSON(t, resp, &post)
	assert.Equal(t, "T2", post.Title)
	assert.Equal(t, "D", post.Description)
}

func ptr(s string) *string { return &s }

func TestRegisterConflicts(t *testing.T) {
	tc := newTestClient(t)
	registerAndLogin(t, tc, "alice")

	resp := tc.postJSON(t, "/api/user/register", model.RegisterRequest{Username: "alice", Password: "x", Email: "other@x.com"})
	expectError(t, resp, http.StatusBadRequest, "Username already exists")

	resp = tc.postJSON(t, "/api/user/register", model.RegisterRequest{Username: "bob", Password: "x", Email: "alice@x.com"})
	expectError(t, resp, http.StatusBadRequest, "Email already exists")

	resp = tc.postJSON(t, "/api/user/register", model.RegisterRequest{Username: "carol", Password: "x", Email: "nope"})
	expectStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestRegisterRejectsBadJSON(t *testing.T) {
	tc := newTestClient(t)

	resp, err := tc.client.Post(tc.server.URL+"/api/user/register", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	expectStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp, err = tc.client.Post(tc.server.URL+"/api/user/register", "application/json", nil)
	require.NoError(t, err)
	expectStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestLoginFailures(t *testing.T) {
	tc := newTestClient(t)
	registerAndLogin(t, tc, "alice")

	resp := tc.postJSON(t, "/api/user/login", model.LoginRequest{Username: "alice", Password: "wrong"})
	expectError(t, resp, http.StatusBadRequest, "Password does not Match")

	resp = tc.postJSON(t, "/api/user/login", model.LoginRequest{Username: "nobody", Password: "pw"})
	expectError(t, resp, http.StatusNotFound, "Username not Found")
}

func TestVerifyAndGetUser(t *testing.T) {
	tc := newTestClient(t)
	id, _ := registerAndLogin(t, tc, "alice")

	resp := tc.postJSON(t, "/api/user/verify", model.VerifyRequest{Username: "alice"})
	expectStatus(t, resp, http.StatusOK)
	var verified model.VerifyResponse
	decodeJSON(t, resp, &verified)
	assert.Equal(t, "User Verified Successfully", verified.Msg)
	assert.Equal(t, id, verified.User.ID)
	assert.Equal(t, []string{}, verified.User.Posts)

	resp = tc.postJSON(t, "/api/user/verify", model.VerifyRequest{Username: "nobody"})
	expectError(t, resp, http.StatusNotFound, "Can't find User!")

	resp = tc.get(t, "/api/user/nobody")
	expectError(t, resp, http.StatusNotFound, "Couldn't Find the User")
}

func TestGateProtectsMutations(t *testing.T) {
	tc := newTestClient(t)
	aliceID, _ := registerAndLogin(t, tc, "alice")
	post := createPost(t, tc, "alice", "T")

	expired, err := auth.NewIssuer("test-secret", time.Hour, auth.WithClock(func() time.Time {
		return time.Now().Add(-25 * time.Hour)
	}))
	require.NoError(t, err)
	staleToken, err := expired.Issue(auth.Claims{UserID: aliceID, Username: "alice"})
	require.NoError(t, err)

	forged, err := auth.NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)
	forgedToken, err := forged.Issue(auth.Claims{UserID: aliceID, Username: "alice"})
	require.NoError(t, err)

	requests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPut, "/api/user/update", model.UserUpdateRequest{UserID: aliceID, FirstName: ptr("A")}},
		{http.MethodDelete, "/api/user/" + aliceID, nil},
		{http.MethodPut, "/api/post/update", model.PostUpdateRequest{PostID: post.ID, Title: ptr("x")}},
		{http.MethodDelete, "/api/post/" + post.ID, nil},
		{http.MethodPut, "/api/comment/update", model.CommentUpdateRequest{CommentID: "c", Content: ptr("x")}},
		{http.MethodDelete, "/api/comment/c", nil},
	}
	for _, req := range requests {
		for _, token := range []string{"", "garbage", staleToken, forgedToken} {
			resp := tc.do(t, req.method, req.path, req.body, token)
			expectError(t, resp, http.StatusUnauthorized, "Authentication Failed!")
		}
	}

	resp := tc.get(t, "/api/post/"+aliceID+"/"+post.ID)
	expectStatus(t, resp, http.StatusOK)
	var got model.Post
	decodeJSON(t, resp, &got)
	assert.Equal(t, post, got, "rejected requests must not change state")

	resp = tc.get(t, "/api/user/alice")
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}

func TestUserUpdateAndDelete(t *testing.T) {
	tc := newTestClient(t)
	aliceID, aliceToken := registerAndLogin(t, tc, "alice")
	bobID, bobToken := registerAndLogin(t, tc, "bob")

	resp := tc.do(t, http.MethodPut, "/api/user/update", model.UserUpdateRequest{
		UserID: aliceID, FirstName: ptr("Alice"), Password: ptr("pw2"),
	}, aliceToken)
	expectStatus(t, resp, http.StatusCreated)
	var msg model.MessageResponse
	decodeJSON(t, resp, &msg)
	assert.Equal(t, "Record Updated...!", msg.Msg)

	resp = tc.postJSON(t, "/api/user/login", model.LoginRequest{Username: "alice", Password: "pw2"})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = tc.get(t, "/api/user/alice")
	var user model.PublicUser
	decodeJSON(t, resp, &user)
	assert.Equal(t, "Alice", user.FirstName)

	resp = tc.do(t, http.MethodPut, "/api/user/update", model.UserUpdateRequest{UserID: aliceID, FirstName: ptr("x")}, bobToken)
	expectStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = tc.do(t, http.MethodPut, "/api/user/update", model.UserUpdateRequest{UserID: bobID, Email: ptr("alice@x.com")}, bobToken)
	expectError(t, resp, http.StatusBadRequest, "Email already exists")

	resp = tc.do(t, http.MethodDelete, "/api/user/"+aliceID, nil, bobToken)
	expectStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = tc.do(t, http.MethodDelete, "/api/user/"+bobID, nil, bobToken)
	expectStatus(t, resp, http.StatusCreated)
	decodeJSON(t, resp, &msg)
	assert.Equal(t, "Record Deleted...!", msg.Msg)

	resp = tc.do(t, http.MethodDelete, "/api/user/"+bobID, nil, bobToken)
	expectStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	resp = tc.get(t, "/api/user/bob")
	expectStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestPostRoutes(t *testing.T) {
	tc := newTestClient(t)
	aliceID, aliceToken := registerAndLogin(t, tc, "alice")
	bobID, bobToken := registerAndLogin(t, tc, "bob")

	resp := tc.get(t, "/api/post/"+aliceID)
	expectStatus(t, resp, http.StatusOK)
	var posts []model.Post
	decodeJSON(t, resp, &posts)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	first := createPost(t, tc, "alice", "one")
	second := createPost(t, tc, "alice", "two")
	createPost(t, tc, "bob", "three")

	resp = tc.get(t, "/api/post/"+aliceID)
	expectStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &posts)
	assert.Equal(t, []model.Post{first, second}, posts)

	resp = tc.get(t, "/api/post/"+bobID+"/"+first.ID)
	expectError(t, resp, http.StatusNotFound, "Couldn't Find the User/Post")

	resp = tc.postJSON(t, "/api/post", model.CreatePostRequest{Title: "T", Description: "D", Content: "C", Author: "ghost"})
	expectError(t, resp, http.StatusNotFound, "Author not found")

	resp = tc.postJSON(t, "/api/post", model.CreatePostRequest{Title: "T", Author: "alice"})
	expectStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp = tc.do(t, http.MethodPut, "/api/post/update", model.PostUpdateRequest{PostID: first.ID, Title: ptr("x")}, bobToken)
	expectStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = tc.do(t, http.MethodPut, "/api/post/update", model.PostUpdateRequest{PostID: "missing", Title: ptr("x")}, aliceToken)
	expectStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	resp = tc.do(t, http.MethodDelete, "/api/post/"+first.ID, nil, bobToken)
	expectStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = tc.do(t, http.MethodDelete, "/api/post/"+first.ID, nil, aliceToken)
		expectStatus(t, resp, http.StatusOK)
		var msg model.MessageResponse
		decodeJSON(t, resp, &msg)
		assert.Equal(t, "Record Deleted...!", msg.Msg)
	}

	resp = tc.get(t, "/api/post/"+aliceID+"/"+first.ID)
	expectStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestCommentRoutes(t *testing.T) {
	tc := newTestClient(t)
	registerAndLogin(t, tc, "alice")
	_, bobToken := registerAndLogin(t, tc, "bob")
	post := createPost(t, tc, "alice", "T")

	resp := tc.postJSON(t, "/api/comment", model.CreateCommentRequest{Content: "hi", Author: "ghost", Post: post.ID})
	expectError(t, resp, http.StatusNotFound, "User not found")

	resp = tc.postJSON(t, "/api/comment", model.CreateCommentRequest{Content: "hi", Author: "bob", Post: "missing"})
	expectError(t, resp, http.StatusNotFound, "Post not found")

	resp = tc.postJSON(t, "/api/comment", model.CreateCommentRequest{Content: "hi", Author: "bob", Post: post.ID})
	expectStatus(t, resp, http.StatusCreated)
	var created model.CreateCommentResponse
	decodeJSON(t, resp, &created)
	commentID := created.Comment.ID

	resp = tc.get(t, "/api/comment/"+commentID)
	expectStatus(t, resp, http.StatusOK)
	var single model.Comment
	decodeJSON(t, resp, &single)
	assert.Equal(t, created.Comment, single)

	resp = tc.get(t, "/api/comment/missing")
	expectError(t, resp, http.StatusNotFound, "Couldn't Find the Comment")

	_, carolToken := registerAndLogin(t, tc, "carol")
	resp = tc.do(t, http.MethodPut, "/api/comment/update", model.CommentUpdateRequest{CommentID: commentID, Content: ptr("x")}, carolToken)
	expectStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = tc.do(t, http.MethodPut, "/api/comment/update", model.CommentUpdateRequest{CommentID: commentID, Content: ptr("hello")}, bobToken)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = tc.get(t, "/api/comment/"+commentID)
	decodeJSON(t, resp, &single)
	assert.Equal(t, "hello", single.Content)

	resp = tc.do(t, http.MethodDelete, "/api/comment/"+commentID, nil, carolToken)
	expectStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = tc.do(t, http.MethodDelete, "/api/comment/"+commentID, nil, bobToken)
		expectStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	resp = tc.get(t, "/api/comment/"+post.ID)
	expectStatus(t, resp, http.StatusOK)
	var comments []model.Comment
	decodeJSON(t, resp, &comments)
	assert.Empty(t, comments)
}
