package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/alphabot-ai/quill/internal/client"
)

const defaultServerURL = "http://localhost:8080"

// session is the client state persisted between CLI invocations.
type session struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	UserID   string `json:"user_id"`
	Token    string `json:"token"`
}

var errNoSession = errors.New("not logged in - run 'quill login --username <name>' first")

func sessionPath() string {
	if p := os.Getenv("QUILL_SESSION"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "quill", "session.json")
}

func loadSession() (session, error) {
	path := sessionPath()
	if path == "" {
		return session{}, errNoSession
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return session{}, errNoSession
	}
	if err != nil {
		return session{}, err
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return session{}, err
	}
	return s, nil
}

func saveSession(s session) error {
	path := sessionPath()
	if path == "" {
		return errors.New("cannot locate a config directory; set QUILL_SESSION")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(s, "", "  ")
	return os.WriteFile(path, data, 0o600)
}

// baseURL resolves the server URL: --url, then the saved session, then the
// local default.
func baseURL(s session) string {
	switch {
	case serverURL != "":
		return strings.TrimSuffix(serverURL, "/")
	case s.BaseURL != "":
		return s.BaseURL
	default:
		return defaultServerURL
	}
}

// anonymousClient works without a saved session.
func anonymousClient() *client.Client {
	s, _ := loadSession()
	return client.New(baseURL(s))
}

// sessionClient requires a saved login and returns a client carrying its token.
func sessionClient() (session, *client.Client, error) {
	s, err := loadSession()
	if err != nil {
		return session{}, nil, err
	}
	if s.Token == "" {
		return session{}, nil, errNoSession
	}
	c := client.New(baseURL(s))
	c.Token = s.Token
	c.Username = s.Username
	return s, c, nil
}
