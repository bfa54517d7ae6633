package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mobile-next/nativescreenshot/bridge"
	"github.com/mobile-next/nativescreenshot/commands"
)

var (
	errMethodNotFound = errors.New("method not found")
	errInvalidParams  = errors.New("invalid parameters")
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// GetMethodRegistry returns the server's own methods. Screenshot methods are not
// listed here; anything not found falls through to the bridge.
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"media.recent":    handleMediaRecent,
		"media.prune":     handleMediaPrune,
		"server.shutdown": handleServerShutdown,
	}
}

// Execute dispatches a method call: server methods first, then the bridge.
// This is the main entry point for embedded clients
func Execute(method string, params json.RawMessage) (interface{}, error) {
	if handler, exists := GetMethodRegistry()[method]; exists {
		return handler(params)
	}

	return callBridge(method, params)
}

func callBridge(method string, params json.RawMessage) (interface{}, error) {
	h := commands.GetHost()
	if h == nil {
		return nil, fmt.Errorf("screenshot bridge is not initialized")
	}

	args, err := decodeParams(params)
	if err != nil {
		return nil, err
	}

	value, err := h.Bridge.Call(method, args)
	if errors.Is(err, bridge.ErrNotImplemented) {
		return nil, fmt.Errorf("%w: %s not implemented", errMethodNotFound, method)
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

// decodeParams keeps numbers as json.Number so integer arguments survive intact.
func decodeParams(params json.RawMessage) (bridge.Params, error) {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return bridge.Params{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var args bridge.Params
	if err := decoder.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: %v. Expected an object", errInvalidParams, err)
	}
	return args, nil
}

type MediaRecentParams struct {
	Limit int  `json:"limit,omitempty"`
	Index bool `json:"index,omitempty"`
}

func handleMediaRecent(params json.RawMessage) (interface{}, error) {
	var mediaParams MediaRecentParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &mediaParams); err != nil {
			return nil, fmt.Errorf("%w: %v. Expected fields: limit, index", errInvalidParams, err)
		}
	}

	response := commands.MediaListCommand(commands.MediaListRequest{
		Limit: mediaParams.Limit,
		Index: mediaParams.Index,
	})
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}

	return response.Data, nil
}

func handleMediaPrune(params json.RawMessage) (interface{}, error) {
	response := commands.MediaPruneCommand()
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}

	return response.Data, nil
}

func handleServerShutdown(params json.RawMessage) (interface{}, error) {
	select {
	case shutdownRequested <- struct{}{}:
	default:
	}
	return okResponse, nil
}
