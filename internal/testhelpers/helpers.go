// Package testhelpers provides common utilities for testing the Loup-Garou
// server over its real transports.
//
// A GameConn wraps either a WebSocket or a raw TCP connection and exposes
// the newline-delimited JSON frames the server sends, one at a time,
// whatever way the transport batched them.
package testhelpers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultTimeout bounds every wait for a server frame.
const DefaultTimeout = 2 * time.Second

// TestOrigin is the Origin header sent by ConnectWebSocket.
const TestOrigin = "http://localhost:8080"

// Message is one decoded server frame.
type Message map[string]any

// Type returns the message's type tag.
func (m Message) Type() string {
	s, _ := m["type"].(string)
	return s
}

// Field returns a string field, or "" when absent.
func (m Message) Field(key string) string {
	s, _ := m[key].(string)
	return s
}

// Players returns players_info.players.
func (m Message) Players() []string {
	info, _ := m["players_info"].(map[string]any)
	raw, _ := info["players"].([]any)
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

// GameConn is a test client connection.
type GameConn struct {
	ws      *websocket.Conn
	tcp     net.Conn
	scanner *bufio.Scanner
	pending [][]byte
}

// WebSocketURL turns an httptest server URL into the game endpoint URL.
func WebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// ConnectWebSocket creates a WebSocket connection to the specified URL.
// It returns the connection or an error if connection fails.
func ConnectWebSocket(url string) (*GameConn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	headers.Set("Origin", TestOrigin)

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &GameConn{ws: conn}, nil
}

// ConnectTCP opens a raw TCP game connection.
func ConnectTCP(addr string) (*GameConn, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	return &GameConn{tcp: conn, scanner: sc}, nil
}

// MustConnectWebSocket is ConnectWebSocket failing the test on error and
// closing the connection on cleanup.
func MustConnectWebSocket(t *testing.T, url string) *GameConn {
	t.Helper()
	c, err := ConnectWebSocket(url)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// MustConnectTCP is ConnectTCP failing the test on error and closing the
// connection on cleanup.
func MustConnectTCP(t *testing.T, addr string) *GameConn {
	t.Helper()
	c, err := ConnectTCP(addr)
	if err != nil {
		t.Fatalf("Failed to connect TCP: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// SendRaw writes raw bytes as a single transport unit.
func (c *GameConn) SendRaw(data []byte) error {
	if c.ws != nil {
		return c.ws.WriteMessage(websocket.TextMessage, data)
	}
	if err := c.tcp.SetWriteDeadline(time.Now().Add(DefaultTimeout)); err != nil {
		return err
	}
	_, err := c.tcp.Write(data)
	return err
}

// Send marshals msg and writes it as one frame.
func (c *GameConn) Send(t *testing.T, msg any) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal message: %v", err)
	}
	if err := c.SendRaw(append(data, '\n')); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}
}

// Next returns the next frame or an error, waiting at most timeout.
func (c *GameConn) Next(timeout time.Duration) (Message, error) {
	for len(c.pending) == 0 {
		unit, err := c.readUnit(timeout)
		if err != nil {
			return nil, err
		}
		for _, line := range bytes.Split(unit, []byte{'\n'}) {
			if line = bytes.TrimSpace(line); len(line) > 0 {
				c.pending = append(c.pending, line)
			}
		}
	}

	frame := c.pending[0]
	c.pending = c.pending[1:]
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *GameConn) readUnit(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	if c.ws != nil {
		if err := c.ws.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		_, data, err := c.ws.ReadMessage()
		return data, err
	}

	if err := c.tcp.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	if c.scanner.Scan() {
		return append([]byte(nil), c.scanner.Bytes()...), nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("connection closed")
}

// Expect skips frames until one of type typ arrives and returns it.
func (c *GameConn) Expect(t *testing.T, typ string) Message {
	t.Helper()
	deadline := time.Now().Add(DefaultTimeout)
	var seen []string
	for time.Now().Before(deadline) {
		msg, err := c.Next(time.Until(deadline))
		if err != nil {
			t.Fatalf("Waiting for %q (saw %v): %v", typ, seen, err)
		}
		if msg.Type() == typ {
			return msg
		}
		seen = append(seen, msg.Type())
	}
	t.Fatalf("Timed out waiting for %q (saw %v)", typ, seen)
	return nil
}

// ExpectNone fails the test if a frame of type typ arrives within timeout.
func (c *GameConn) ExpectNone(t *testing.T, typ string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		msg, err := c.Next(time.Until(deadline))
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return
			}
			t.Fatalf("Unexpected error while waiting for absence of %q: %v", typ, err)
		}
		if msg.Type() == typ {
			t.Fatalf("Expected no %q, got %v", typ, msg)
		}
	}
}

// Close closes the underlying connection.
func (c *GameConn) Close() error {
	if c.ws != nil {
		_ = c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return c.ws.Close()
	}
	return c.tcp.Close()
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertContentType checks if the HTTP response has the expected Content-Type header.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	contentType := resp.Header.Get("Content-Type")
	if contentType != expected {
		t.Errorf("Expected content type %s, got %s", expected, contentType)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}
