package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alphabot-ai/quill/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginKeepsToken(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/login":
			var req model.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(model.LoginResponse{Msg: "ok", Username: req.Username, Token: "tok-" + req.Username})
		case "/api/post/p1":
			sawAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(model.MessageResponse{Msg: "Record Deleted...!"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	assert.False(t, c.IsAuthenticated())

	token, err := c.Login("alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "tok-alice", token)
	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, "alice", c.Username)

	require.NoError(t, c.DeletePost("p1"))
	assert.Equal(t, "Bearer tok-alice", sawAuth)
}

func TestErrorResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/login":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: "Password does not Match"})
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login("alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Password does not Match", apiErr.Message)
	assert.False(t, c.IsAuthenticated())

	_, err = c.GetUser("alice")
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	assert.Contains(t, err.Error(), "upstream down")

	assert.Equal(t, 0, StatusCode(assert.AnError))
}

func TestPathsAreEscaped(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(model.PublicUser{Username: "a b"})
	}))
	defer srv.Close()

	user, err := New(srv.URL).GetUser("a b")
	require.NoError(t, err)
	assert.Equal(t, "a b", user.Username)
	assert.Equal(t, "/api/user/a%20b", path)
}
