package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mobile-next/nativescreenshot/commands"
	"github.com/mobile-next/nativescreenshot/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, enableCORS bool) string {
	t.Helper()
	setupHost(t)

	server := httptest.NewServer(NewWebSocketHandler(enableCORS))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func connectWebSocket(t *testing.T, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "should connect to WebSocket")
	return conn
}

func sendJSONRPCRequest(t *testing.T, conn *websocket.Conn, req JSONRPCRequest) {
	err := conn.WriteJSON(req)
	require.NoError(t, err, "should send request")
}

func readJSONRPCResponse(t *testing.T, conn *websocket.Conn) JSONRPCResponse {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp JSONRPCResponse
	err := conn.ReadJSON(&resp)
	require.NoError(t, err, "should read response")
	return resp
}

func screenshotImageRequest(id interface{}) JSONRPCRequest {
	return JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "takeScreenshotImage",
		Params:  json.RawMessage(`{"quality":50}`),
		ID:      id,
	}
}

func TestWebSocket_ValidRequest(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, screenshotImageRequest(1))
	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Equal(t, 1, int(resp.ID.(float64)))
	assert.Nil(t, resp.Error)

	encoded, ok := resp.Result.(string)
	require.True(t, ok, "Expected base64 string result, got %T", resp.Result)
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestWebSocket_MissingJSONRPCVersion(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	req := screenshotImageRequest(1)
	req.JSONRPC = "1.0"

	sendJSONRPCRequest(t, conn, req)
	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.NotNil(t, resp.Error)

	errorMap := resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeInvalidRequest), errorMap["code"])
	assert.Equal(t, errTitleInvalidReq, errorMap["message"])
	assert.Equal(t, errMsgInvalidJSONRPC, errorMap["data"])
}

func TestWebSocket_MissingID(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, screenshotImageRequest(nil))
	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.NotNil(t, resp.Error)

	errorMap := resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeInvalidRequest), errorMap["code"])
	assert.Equal(t, errTitleInvalidReq, errorMap["message"])
	assert.Equal(t, errMsgIDRequired, errorMap["data"])
}

func TestWebSocket_MissingMethod(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	req := screenshotImageRequest(1)
	req.Method = ""

	sendJSONRPCRequest(t, conn, req)
	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.NotNil(t, resp.Error)

	errorMap := resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeInvalidRequest), errorMap["code"])
	assert.Equal(t, errTitleInvalidReq, errorMap["message"])
	assert.Equal(t, errMsgMethodRequired, errorMap["data"])
}

func TestWebSocket_MethodNotFound(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	req := JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "nonexistent_method",
		Params:  json.RawMessage(`{}`),
		ID:      1,
	}

	sendJSONRPCRequest(t, conn, req)
	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.NotNil(t, resp.Error)

	errorMap := resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeMethodNotFound), errorMap["code"])
	assert.Equal(t, "Method not found", errorMap["message"])
	assert.Contains(t, errorMap["data"], "nonexistent_method not implemented")
}

func TestWebSocket_InvalidJSON(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	err := conn.WriteMessage(websocket.TextMessage, []byte("invalid json"))
	require.NoError(t, err)

	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.NotNil(t, resp.Error)

	errorMap := resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeParseError), errorMap["code"])
	assert.Equal(t, errTitleParseError, errorMap["message"])
	assert.Equal(t, errMsgParseError, errorMap["data"])
}

func TestWebSocket_BinaryMessageRejected(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	err := conn.WriteMessage(websocket.BinaryMessage, []byte("binary data"))
	require.NoError(t, err)

	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.NotNil(t, resp.Error)

	errorMap := resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeInvalidRequest), errorMap["code"])
	assert.Equal(t, errTitleInvalidReq, errorMap["message"])
	assert.Equal(t, errMsgTextOnly, errorMap["data"])
}

func TestWebSocket_MultipleRequests(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	for i := 1; i <= 3; i++ {
		sendJSONRPCRequest(t, conn, screenshotImageRequest(i))
		resp := readJSONRPCResponse(t, conn)

		assert.Equal(t, "2.0", resp.JSONRPC)
		assert.Equal(t, i, int(resp.ID.(float64)))
		assert.Nil(t, resp.Error)
		assert.NotNil(t, resp.Result)
	}
}

// TestWebSocket_MediaScannedNotification checks that a saved screenshot is pushed to
// connected clients alongside the call's response
func TestWebSocket_MediaScannedNotification(t *testing.T) {
	wsURL := setupTestServer(t, false)
	h := commands.GetHost()
	h.Notifier.AddSink(media.SinkFunc(broadcastMediaEntry))

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "takeScreenshot",
		ID:      7,
	})

	// the notification is queued, so it may arrive before or after the response
	var entry *media.Entry
	var result interface{}
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg struct {
			JSONRPC string          `json:"jsonrpc"`
			Method  string          `json:"method"`
			Params  json.RawMessage `json:"params"`
			Result  interface{}     `json:"result"`
			Error   interface{}     `json:"error"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "2.0", msg.JSONRPC)

		if msg.Method != "" {
			assert.Equal(t, notificationMediaScanned, msg.Method)
			entry = &media.Entry{}
			require.NoError(t, json.Unmarshal(msg.Params, entry))
			continue
		}

		assert.Nil(t, msg.Error)
		result = msg.Result
	}

	require.NotNil(t, entry, "expected a media.scanned notification")
	assert.NotEmpty(t, entry.ID)
	assert.Greater(t, entry.Size, int64(0))
	assert.Equal(t, entry.Path, result)
}

// stalledConnection upgrades one connection server-side and hands it to the test
func stalledConnection(t *testing.T) (*wsConnection, *websocket.Conn) {
	t.Helper()

	serverConns := make(chan *wsConnection, 1)
	release := make(chan struct{})
	upgrader := newUpgrader(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		wsc := newWSConnection(conn)
		serverConns <- wsc
		<-release
		wsc.close()
		_ = conn.Close()
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	// the client never reads from this connection
	client := connectWebSocket(t, "ws"+strings.TrimPrefix(server.URL, "http"))
	t.Cleanup(func() { _ = client.Close() })

	select {
	case wsc := <-serverConns:
		return wsc, client
	case <-time.After(5 * time.Second):
		t.Fatal("server side of the connection never appeared")
		return nil, nil
	}
}

func TestWebSocket_WriteToStalledClientTimesOut(t *testing.T) {
	previous := wsWriteTimeout
	wsWriteTimeout = 100 * time.Millisecond
	defer func() { wsWriteTimeout = previous }()

	wsc, _ := stalledConnection(t)
	payload := map[string]string{"data": strings.Repeat("x", 1<<20)}

	done := make(chan error, 1)
	go func() {
		// keep writing until the peer's buffers are full and the deadline fires
		for i := 0; i < 512; i++ {
			if err := wsc.sendJSON(payload); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		assert.Error(t, err, "a peer that never reads must make writes fail")
	case <-time.After(10 * time.Second):
		t.Fatal("write to a stalled client blocked past its deadline")
	}
}

func TestWebSocket_BroadcastDoesNotBlockOnStalledClient(t *testing.T) {
	wsc, _ := stalledConnection(t)
	wsClients.add(wsc)
	defer wsClients.remove(wsc)

	entry := media.Entry{ID: "x", Path: strings.Repeat("p", 1<<20)}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			_ = broadcastMediaEntry(entry)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast blocked on a client that does not read")
	}
}

func TestWSConnection_NotifyDropsWhenFullOrClosed(t *testing.T) {
	wsc := &wsConnection{
		notifications: make(chan interface{}, 1),
		done:          make(chan struct{}),
	}

	assert.True(t, wsc.notify("first"))
	assert.False(t, wsc.notify("second"), "queue is full")

	<-wsc.notifications
	wsc.close()
	assert.False(t, wsc.notify("third"), "connection is closed")
}

func TestWebSocket_PingPong(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	pongReceived := make(chan bool, 1)

	conn.SetPongHandler(func(appData string) error {
		pongReceived <- true
		return nil
	})

	// send ping from client side
	err := conn.WriteMessage(websocket.PingMessage, nil)
	require.NoError(t, err)

	// start reading to process pong
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}()

	// wait for pong with timeout
	select {
	case <-pongReceived:
		// success
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive pong response")
	}
}

func TestWebSocket_CORSEnabled(t *testing.T) {
	wsURL := setupTestServer(t, true)

	// connect with different origin
	headers := http.Header{}
	headers.Set("Origin", "http://different-origin.com")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, headers)
	require.NoError(t, err, "should connect with CORS enabled")
	defer conn.Close()

	sendJSONRPCRequest(t, conn, screenshotImageRequest(1))
	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Nil(t, resp.Error)
}

func TestWebSocket_CORSDisabled(t *testing.T) {
	wsURL := setupTestServer(t, false)

	// try to connect with different origin
	headers := http.Header{}
	headers.Set("Origin", "http://different-origin.com")

	_, _, err := websocket.DefaultDialer.Dial(wsURL, headers)
	assert.Error(t, err, "should reject connection with different origin when CORS disabled")
}

func TestWebSocket_ConnectionLifecycle(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)

	req := screenshotImageRequest(1)
	sendJSONRPCRequest(t, conn, req)
	resp := readJSONRPCResponse(t, conn)
	assert.Nil(t, resp.Error)

	// close connection
	err := conn.Close()
	require.NoError(t, err)

	// attempt to send after close should fail
	err = conn.WriteJSON(req)
	assert.Error(t, err, "should fail to send after connection closed")
}

func TestWebSocket_StringID(t *testing.T) {
	wsURL := setupTestServer(t, false)

	conn := connectWebSocket(t, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, screenshotImageRequest("string-id-123"))
	resp := readJSONRPCResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Equal(t, "string-id-123", resp.ID)
	assert.Nil(t, resp.Error)
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin", "", "localhost:12000", true},
		{"same host", "http://localhost:12000", "localhost:12000", true},
		{"different host", "http://evil.example", "localhost:12000", false},
		{"unparseable", "://", "localhost:12000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, isSameOrigin(req))
		})
	}
}
