package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestApp() *application {
	var cfg config
	cfg.env = "test"
	cfg.jwtSecret = "test-secret"
	return &application{
		config:  cfg,
		storage: newMemoryStorage(),
		auth:    newAuthenticator([]byte(cfg.jwtSecret), tokenTTL),
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	err := json.Unmarshal(rec.Body.Bytes(), v)
	require.NoError(t, err, "body: %s", rec.Body.String())
}

// registerAndLogin creates a user through the API and returns a usable token.
func registerAndLogin(t *testing.T, handler http.Handler, username, email string) string {
	t.Helper()
	rec := doRequest(t, handler, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	rec = doRequest(t, handler, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}
