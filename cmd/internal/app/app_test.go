package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	t.Setenv("CADASTRO_TOKEN_SECRET", strings.Repeat("k", 32))
	t.Setenv("CADASTRO_BCRYPT_COST", "4")
	t.Setenv("CADASTRO_VARIANT", "advanced")

	cfg := Config{MetricsEnabled: true, ActivityStreamQueue: 8}
	a, err := New(cfg, discardLogger())
	require.NoError(t, err)
	return a
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestNew_RejectsShortSecretWhenRequired(t *testing.T) {
	t.Setenv("CADASTRO_TOKEN_SECRET", "short")

	_, err := New(Config{RequireTokenSecret: true}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestApp_HealthReadyMetrics(t *testing.T) {
	a := newTestApp(t)
	h := a.Handler()

	rr := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code, "not ready before Serve")

	rr = doJSON(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cadastro_users")
}

func TestApp_RegisterLoginMeAndReset(t *testing.T) {
	a := newTestApp(t)
	h := a.Handler()

	rr := doJSON(t, h, http.MethodPost, "/cadastro", "", map[string]any{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, h, http.MethodPost, "/login", "", map[string]any{
		"username": "bob",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, "bearer", login.TokenType)
	require.NotEmpty(t, login.AccessToken)

	rr = doJSON(t, h, http.MethodGet, "/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"username":"bob"`)
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))

	a.Reset()

	rr = doJSON(t, h, http.MethodGet, "/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "signed token outlives the record")

	rr = doJSON(t, h, http.MethodPost, "/cadastro", "", map[string]any{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"id":1`, "ids restart after Reset")
}

func TestApp_ServeAndShutdown(t *testing.T) {
	a := newTestApp(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/readyz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, a.ready.Load())
}
