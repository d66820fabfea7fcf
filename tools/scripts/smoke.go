// Package main provides a CI-friendly smoke test for a running cadastro server.
//
// It validates:
//   - registration and login (bearer token issued)
//   - /me with the issued token
//   - the live activity stream pushes the caller's VIEW entry
//   - /stats reflects the new user
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const maxReadBytes = 1 << 20 // 1MiB

type logEntry struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Action  string `json:"action"`
	Details string `json:"details"`
}

type streamClient struct {
	conn  *websocket.Conn
	inbox chan logEntry
	errCh chan error
}

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8000", "Server base URL")
		origin   = flag.String("origin", "", "Origin header for the stream handshake")
		password = flag.String("password", "smoke-pass-123", "Password for the smoke user")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}

	root := context.Background()
	httpc := &http.Client{Timeout: *timeout}
	base := strings.TrimRight(*baseURL, "/")

	username := fmt.Sprintf("smoke%d", time.Now().UnixNano())
	email := username + "@example.com"

	var created struct {
		ID int64 `json:"id"`
	}
	mustDo(httpc, http.MethodPost, base+"/cadastro", "", map[string]any{
		"username": username,
		"email":    email,
		"password": *password,
	}, http.StatusCreated, &created)
	if created.ID <= 0 {
		fatalf("register: missing id")
	}

	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	mustDo(httpc, http.MethodPost, base+"/login", "", map[string]any{
		"username": username,
		"password": *password,
	}, http.StatusOK, &login)
	if login.AccessToken == "" || login.TokenType != "bearer" {
		fatalf("login: unexpected token response: type=%q", login.TokenType)
	}

	c := mustConnect(root, streamURL(base), *origin, login.AccessToken, *timeout)
	defer closeWS(c.conn)

	if *verbose {
		fmt.Printf("connected: user=%s id=%d\n", username, created.ID)
	}

	var me struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	mustDo(httpc, http.MethodGet, base+"/me", login.AccessToken, nil, http.StatusOK, &me)
	if me.ID != created.ID || me.Username != username {
		fatalf("me: got id=%d username=%q", me.ID, me.Username)
	}

	e := c.mustReadUntilAction(root, "VIEW", *timeout)
	if e.UserID != created.ID {
		fatalf("stream: entry for user %d, want %d", e.UserID, created.ID)
	}

	var stats struct {
		TotalUsers int `json:"total_usuarios"`
		TotalLogs  int `json:"total_logs"`
	}
	mustDo(httpc, http.MethodGet, base+"/stats", login.AccessToken, nil, http.StatusOK, &stats)
	if stats.TotalUsers < 1 || stats.TotalLogs < 3 {
		fatalf("stats: unexpected totals users=%d logs=%d", stats.TotalUsers, stats.TotalLogs)
	}

	fmt.Printf("OK: user=%s id=%d entry_id=%d total_usuarios=%d\n", username, created.ID, e.ID, stats.TotalUsers)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func streamURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/logs/stream"
	default:
		return "ws://" + strings.TrimPrefix(base, "http://") + "/logs/stream"
	}
}

func mustDo(c *http.Client, method, target, token string, body any, wantStatus int, out any) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, target, rdr)
	if err != nil {
		fatalf("build request %s %s: %v", method, target, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Do(req)
	if err != nil {
		fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxReadBytes))
	if resp.StatusCode != wantStatus {
		fatalf("%s %s: status=%d want=%d body=%s", method, target, resp.StatusCode, wantStatus, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			fatalf("%s %s: bad json: %v", method, target, err)
		}
	}
}

func mustConnect(parent context.Context, wsURL, origin, token string, stepTimeout time.Duration) *streamClient {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: h})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("connect stream: %v", err)
	}

	conn.SetReadLimit(maxReadBytes)

	c := &streamClient{
		conn:  conn,
		inbox: make(chan logEntry, 64),
		errCh: make(chan error, 1),
	}
	c.startReadLoop()
	return c
}

func (c *streamClient) startReadLoop() {
	go func() {
		defer close(c.inbox)

		for {
			mt, data, err := c.conn.Read(context.Background())
			if err != nil {
				select {
				case c.errCh <- err:
				default:
				}
				return
			}
			if mt != websocket.MessageText {
				select {
				case c.errCh <- fmt.Errorf("unsupported message type: %v", mt):
				default:
				}
				return
			}

			var e logEntry
			if err := json.Unmarshal(data, &e); err != nil {
				select {
				case c.errCh <- fmt.Errorf("bad json: %w", err):
				default:
				}
				return
			}

			select {
			case c.inbox <- e:
			default:
				select {
				case c.errCh <- errors.New("inbox overflow: consumer too slow"):
				default:
				}
				return
			}
		}
	}()
}

func (c *streamClient) mustReadUntilAction(parent context.Context, action string, stepTimeout time.Duration) logEntry {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			fatalf("timeout waiting for %s entry: %v", action, ctx.Err())
		case err := <-c.errCh:
			fatalf("stream error while waiting for %s entry: %v", action, err)
		case e, ok := <-c.inbox:
			if !ok {
				fatalf("stream closed while waiting for %s entry", action)
			}
			if e.Action == action {
				return e
			}
		}
	}
}

func closeWS(conn *websocket.Conn) {
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
