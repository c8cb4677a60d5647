package httpapp

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alphabot-ai/quill/docs"
	"github.com/alphabot-ai/quill/internal/blog"
	"github.com/alphabot-ai/quill/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeJSON(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.get(t, "/")
	expectStatus(t, resp, http.StatusOK)
	var info model.ServiceInfo
	decodeJSON(t, resp, &info)
	assert.Equal(t, "quill", info.Name)
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestHealthz(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.get(t, "/healthz")
	expectStatus(t, resp, http.StatusOK)
	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestOpenAPIJSON(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.get(t, "/api/openapi.json")
	expectStatus(t, resp, http.StatusOK)
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	decodeJSON(t, resp, &doc)
	assert.Equal(t, "Quill API", doc.Info.Title)
	for _, path := range []string{"/api/user/register", "/api/post/{userId}/{postId}", "/api/comment/{id}"} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestSwaggerInfoMatchesAnnotations(t *testing.T) {
	src, err := os.ReadFile("doc.go")
	require.NoError(t, err)

	var lines []string
	for _, line := range strings.Split(string(src), "\n") {
		rest, ok := strings.CutPrefix(line, "//\t@description")
		if !ok {
			continue
		}
		lines = append(lines, strings.TrimLeft(rest, "\t"))
	}
	// The last @description belongs to the security definition.
	require.NotEmpty(t, lines)
	lines = lines[:len(lines)-1]

	assert.Equal(t, strings.Join(lines, "\n"), docs.SwaggerInfo.Description)
}

func TestOversizedBody(t *testing.T) {
	tc := newTestClient(t)

	body := `{"username":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	tc.server.Config.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "request body too large", resp.Error)
}

func TestUnknownRoutes(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.get(t, "/api/nothing")
	expectError(t, resp, http.StatusNotFound, "not found")

	resp = tc.do(t, http.MethodPatch, "/api/post/update", nil, "")
	expectError(t, resp, http.StatusMethodNotAllowed, "method not allowed")
}

func TestCORSPreflight(t *testing.T) {
	tc := newTestClient(t)

	req, err := http.NewRequest(http.MethodOptions, tc.server.URL+"/api/post/update", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://blog.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	resp, err := tc.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestRecovererConvertsPanics(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	h := hlog.NewHandler(logger)(recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body.Error)
	assert.Contains(t, logs.String(), "boom")
}

func TestWriteServiceErrorStatus(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{&blog.Error{Kind: blog.KindInvalid, Message: "bad"}, http.StatusBadRequest, "bad"},
		{&blog.Error{Kind: blog.KindConflict, Message: "dup"}, http.StatusBadRequest, "dup"},
		{&blog.Error{Kind: blog.KindBadCredential, Message: "pw"}, http.StatusBadRequest, "pw"},
		{&blog.Error{Kind: blog.KindNotFound, Message: "gone"}, http.StatusNotFound, "gone"},
		{&blog.Error{Kind: blog.KindForbidden, Message: "mine"}, http.StatusForbidden, "mine"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())

		var body model.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.message, body.Error)
	}
}
