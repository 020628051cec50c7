package canvas

import (
	"fmt"
	"time"

	"github.com/hazyhaar/uijit/a2ui"
)

// SizePreset names a predefined canvas geometry.
type SizePreset string

const (
	PresetTV1080p SizePreset = "tv_1080p" // 1920x1080 (16:9)
	PresetTV4K    SizePreset = "tv_4k"    // 3840x2160 (16:9)
	PresetPhone   SizePreset = "phone"    // 390x844 portrait
	PresetTablet  SizePreset = "tablet"   // 1024x768 (4:3)
	PresetSquare  SizePreset = "square"   // 1080x1080 (1:1)
	PresetAuto    SizePreset = "auto"     // fit to viewport
	PresetCustom  SizePreset = "custom"
)

var presetDims = map[SizePreset][2]int{
	PresetTV1080p: {1920, 1080},
	PresetTV4K:    {3840, 2160},
	PresetPhone:   {390, 844},
	PresetTablet:  {1024, 768},
	PresetSquare:  {1080, 1080},
	PresetAuto:    {0, 0},
	PresetCustom:  {0, 0},
}

// Size is the canvas geometry. Zero width/height means fit to viewport.
type Size struct {
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	Preset    SizePreset `json:"preset"`
	ScaleMode string     `json:"scale_mode"` // fit, fill, stretch, none
}

// SizeFromPreset resolves a preset name to a Size.
func SizeFromPreset(preset string) (Size, error) {
	p := SizePreset(preset)
	dims, ok := presetDims[p]
	if !ok {
		return Size{}, fmt.Errorf("%w: unknown size preset %q", ErrInvalidPayload, preset)
	}
	return Size{Width: dims[0], Height: dims[1], Preset: p, ScaleMode: "fit"}, nil
}

// Surface is the authoritative state of one canvas surface. Version starts
// at 0 on creation and increments by exactly one per accepted mutation.
type Surface struct {
	ID         string           `json:"surface_id"`
	Name       string           `json:"name,omitempty"`
	DeviceID   string           `json:"device_id,omitempty"`
	Size       Size             `json:"size"`
	Version    int64            `json:"version"`
	Components []a2ui.Component `json:"components"`
	DataModel  map[string]any   `json:"data_model"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Info is the surface summary returned by create/list/show: identity plus
// the URLs a receiver needs to attach.
type Info struct {
	SurfaceID   string    `json:"surface_id"`
	Name        string    `json:"name,omitempty"`
	DeviceID    string    `json:"device_id,omitempty"`
	Size        Size      `json:"size"`
	Version     int64     `json:"version"`
	LocalURL    string    `json:"local_url"`
	WSURL       string    `json:"ws_url"`
	CreatedAt   time.Time `json:"created_at"`
	Subscribers int       `json:"connected_clients"`
}
