package commands

import (
	"fmt"

	"github.com/mobile-next/nativescreenshot/permissions"
)

const (
	PermissionGrant  = "grant"
	PermissionDeny   = "deny"
	PermissionRevoke = "revoke"
	PermissionStatus = "status"
)

// PermissionResponse reports the stored write grant
type PermissionResponse struct {
	Status   permissions.Status `json:"status"`
	Required bool               `json:"required"`
}

// PermissionCommand answers or inspects a write permission request
func PermissionCommand(action string) *CommandResponse {
	h, err := requireHost()
	if err != nil {
		return NewErrorResponse(err)
	}

	switch action {
	case PermissionGrant:
		err = h.Grants.Set(permissions.StatusGranted)
	case PermissionDeny:
		err = h.Grants.Set(permissions.StatusDenied)
	case PermissionRevoke:
		err = h.Grants.Delete()
	case PermissionStatus:
	default:
		return NewErrorResponse(fmt.Errorf("unknown permission action '%s'", action))
	}

	if err != nil {
		return NewErrorResponse(err)
	}

	status, err := h.Grants.Get()
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(PermissionResponse{
		Status:   status,
		Required: h.Config.Permissions.RequireGrant,
	})
}
