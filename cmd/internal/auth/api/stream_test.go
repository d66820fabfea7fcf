package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogStream_PushesOwnEntries(t *testing.T) {
	env := newTestEnv(t, ConfigForVariant(VariantAdvanced))
	env.register(t, "alice", "123456", "alice@x.com")
	env.register(t, "bob", "123456", "bob@x.com")
	alice := env.login(t, "alice", "123456")
	bob := env.login(t, "bob", "123456")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/logs/stream"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": {"Bearer " + alice}},
	})
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	// Another user's activity is not delivered.
	status, _ := env.do(t, http.MethodGet, "/me", nil, bob)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodPut, "/usuario/1", map[string]any{"age": 33}, alice)
	require.Equal(t, http.StatusOK, status)

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var e logEntryResponse
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, int64(1), e.UserID)
	assert.Equal(t, "UPDATE", e.Action)
}

func TestLogStream_RequiresToken(t *testing.T) {
	env := newTestEnv(t, ConfigForVariant(VariantAdvanced))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/logs/stream"
	_, res, err := websocket.Dial(ctx, wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
