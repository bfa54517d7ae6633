package commands

import (
	"fmt"

	"github.com/mobile-next/nativescreenshot/host"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// activeHost is set once at startup via SetHost and shared by the CLI and the server.
var activeHost *host.Host

// SetHost sets the host whose bridge the commands drive.
// This should be called once at application startup, before any command runs.
func SetHost(h *host.Host) {
	activeHost = h
}

// GetHost returns the current host, or nil if SetHost has not been called yet.
func GetHost() *host.Host {
	return activeHost
}

func requireHost() (*host.Host, error) {
	if activeHost == nil {
		return nil, fmt.Errorf("screenshot bridge is not initialized")
	}
	return activeHost, nil
}
