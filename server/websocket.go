package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mobile-next/nativescreenshot/media"
	"github.com/mobile-next/nativescreenshot/utils"
)

const (
	notificationMediaScanned = "media.scanned"

	// notifications queued per connection before new ones are dropped
	notificationQueueSize = 16
)

// wsWriteTimeout bounds every WebSocket write
var wsWriteTimeout = WriteTimeout

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	notifications chan interface{}
	done          chan struct{}
}

func newWSConnection(conn *websocket.Conn) *wsConnection {
	wsc := &wsConnection{
		conn:          conn,
		notifications: make(chan interface{}, notificationQueueSize),
		done:          make(chan struct{}),
	}
	go wsc.pumpNotifications()
	return wsc
}

// pumpNotifications writes queued notifications until the connection is closed
func (wsc *wsConnection) pumpNotifications() {
	for {
		select {
		case <-wsc.done:
			return
		case v := <-wsc.notifications:
			if err := wsc.sendJSON(v); err != nil {
				utils.Verbose("WebSocket notification failed: %v", err)
			}
		}
	}
}

// notify queues v without blocking. It is dropped when the queue is full.
func (wsc *wsConnection) notify(v interface{}) bool {
	select {
	case <-wsc.done:
		return false
	default:
	}

	select {
	case wsc.notifications <- v:
		return true
	default:
		return false
	}
}

func (wsc *wsConnection) close() {
	close(wsc.done)
}

// wsHub tracks open connections so media notifications can reach them
type wsHub struct {
	mu    sync.Mutex
	conns map[*wsConnection]struct{}
}

var wsClients = &wsHub{conns: make(map[*wsConnection]struct{})}

func (h *wsHub) add(c *wsConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *wsHub) remove(c *wsConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

func (h *wsHub) snapshot() []*wsConnection {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := make([]*wsConnection, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

func (h *wsHub) broadcast(v interface{}) {
	for _, c := range h.snapshot() {
		if !c.notify(v) {
			utils.Verbose("WebSocket client is not keeping up, notification dropped")
		}
	}
}

func (h *wsHub) closeAll() {
	for _, c := range h.snapshot() {
		_ = c.conn.Close()
	}
}

// broadcastMediaEntry is registered as a media sink while the server runs
func broadcastMediaEntry(entry media.Entry) error {
	wsClients.broadcast(JSONRPCNotification{
		JSONRPC: "2.0",
		Method:  notificationMediaScanned,
		Params:  entry,
	})
	return nil
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

// NewWebSocketHandler serves JSON-RPC over WebSocket and pushes media notifications
func NewWebSocketHandler(enableCORS bool) http.Handler {
	upgrader := newUpgrader(enableCORS)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(upgrader, w, r)
	})
}

func handleWebSocket(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := newWSConnection(conn)
	defer wsConn.close()
	wsClients.add(wsConn)
	defer wsClients.remove(wsConn)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection closed: %v", err)
			break
		}

		if messageType != websocket.TextMessage {
			wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgTextOnly)
			continue
		}

		handleWSMessage(wsConn, message)
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func handleWSMessage(wsConn *wsConnection, message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		wsConn.sendError(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if req.JSONRPC != "2.0" {
		wsConn.sendError(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
		return
	}

	if req.ID == nil {
		wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
		return
	}

	if req.Method == "" {
		wsConn.sendError(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired)
		return
	}

	utils.Info("WebSocket Request ID: %v, Method: %s", req.ID, req.Method)

	result, err := Execute(req.Method, req.Params)
	if err != nil {
		code, title := classifyError(err)
		if code == ErrCodeServerError {
			utils.Error("Error executing method %s: %v", req.Method, err)
		}
		wsConn.sendError(req.ID, code, title, err.Error())
		return
	}

	wsConn.sendResponse(req.ID, result)
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := jsonRPCResult{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()

	if err := wsc.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return wsc.conn.WriteJSON(v)
}
