package commands

import (
	"fmt"

	"github.com/mobile-next/nativescreenshot/media"
)

// MediaListRequest selects which index to read
type MediaListRequest struct {
	Limit int  `json:"limit,omitempty"`
	Index bool `json:"index,omitempty"` // read the persistent index instead of the recent cache
}

// MediaListCommand lists screenshots the bridge has written
func MediaListCommand(req MediaListRequest) *CommandResponse {
	h, err := requireHost()
	if err != nil {
		return NewErrorResponse(err)
	}

	var entries []media.Entry
	if req.Index {
		if h.Store == nil {
			return NewErrorResponse(fmt.Errorf("media index is disabled"))
		}
		entries, err = h.Store.List(req.Limit)
		if err != nil {
			return NewErrorResponse(err)
		}
	} else {
		entries = h.Recent.List()
		if req.Limit > 0 && len(entries) > req.Limit {
			entries = entries[:req.Limit]
		}
	}

	if entries == nil {
		entries = []media.Entry{}
	}

	return NewSuccessResponse(map[string]interface{}{
		"entries": entries,
	})
}

// MediaPruneCommand drops index entries whose files are gone
func MediaPruneCommand() *CommandResponse {
	h, err := requireHost()
	if err != nil {
		return NewErrorResponse(err)
	}

	if h.Store == nil {
		return NewErrorResponse(fmt.Errorf("media index is disabled"))
	}

	removed, err := h.Store.Prune()
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error pruning media index: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"removed": removed,
	})
}
