package canvas

import (
	"time"

	"github.com/hazyhaar/uijit/a2ui"
)

// UpdateKind discriminates the wire messages sent to receivers.
type UpdateKind string

const (
	// KindFullRender carries the entire component tree and data model.
	// Component changes always produce a full render, never a tree diff.
	KindFullRender UpdateKind = "full_render"

	// KindDataPatch carries only the changed data paths; the tree is
	// untouched and receivers re-bind in place.
	KindDataPatch UpdateKind = "data_patch"

	// KindClose tells receivers the surface is gone.
	KindClose UpdateKind = "close"
)

// UpdateMessage is one versioned wire message. Every accepted mutation maps
// to exactly one message; Version is the post-mutation version, so receivers
// can detect gaps and discard stale messages.
type UpdateMessage struct {
	Kind       UpdateKind       `json:"type"`
	SurfaceID  string           `json:"surface_id"`
	Version    int64            `json:"version"`
	Components []a2ui.Component `json:"components,omitempty"`
	DataModel  map[string]any   `json:"data_model,omitempty"`
	Patch      map[string]any   `json:"patch,omitempty"`
	Timestamp  time.Time        `json:"ts"`
}

// FullRender encodes the complete state of a surface.
func FullRender(s Surface) UpdateMessage {
	return UpdateMessage{
		Kind:       KindFullRender,
		SurfaceID:  s.ID,
		Version:    s.Version,
		Components: s.Components,
		DataModel:  s.DataModel,
		Timestamp:  time.Now(),
	}
}

// DataPatch encodes a data-model change: only the changed paths travel.
func DataPatch(s Surface, changed map[string]any) UpdateMessage {
	return UpdateMessage{
		Kind:      KindDataPatch,
		SurfaceID: s.ID,
		Version:   s.Version,
		Patch:     changed,
		Timestamp: time.Now(),
	}
}

// CloseMessage encodes the final message of a surface's stream. Closing
// does not bump the version: the message carries the version of the last
// accepted mutation.
func CloseMessage(s Surface) UpdateMessage {
	return UpdateMessage{
		Kind:      KindClose,
		SurfaceID: s.ID,
		Version:   s.Version,
		Timestamp: time.Now(),
	}
}
