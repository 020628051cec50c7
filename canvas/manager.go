// CLAUDE:SUMMARY Surface manager — the seven canvas operations composing store, update encoding, hub fan-out, and device cursors.
// Package canvas is the surface engine: an in-memory registry of canvas
// surfaces, versioned update messages, and per-surface fan-out to receivers.
//
// Agents drive surfaces through seven operations (create, update, data,
// close, list, show, get), exposed as MCP tools. Receivers follow a surface
// through Subscribe: a full snapshot first, then live updates in version
// order.
//
// Usage:
//
//	mgr := canvas.New(cfg, logger, canvas.WithAudit(auditLogger))
//	mgr.RegisterMCP(mcpServer)
//	sub, _ := mgr.Subscribe(surfaceID)
//	for msg := range sub.Updates() { ... }
package canvas

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/uijit/a2ui"
	"github.com/hazyhaar/uijit/audit"
	"github.com/hazyhaar/uijit/idgen"
)

// Manager composes the store, the hub, and per-device navigation cursors.
type Manager struct {
	cfg     *Config
	logger  *slog.Logger
	store   *Store
	hub     *Hub
	auditor *audit.SQLiteLogger

	devMu   sync.Mutex
	cursors map[string]string // device_id -> current surface_id
}

// Option customises a Manager.
type Option func(*Manager)

// WithAudit attaches an audit logger; every MCP tool call is then recorded.
func WithAudit(l *audit.SQLiteLogger) Option {
	return func(m *Manager) { m.auditor = l }
}

// WithIDGenerator overrides the surface ID generator (tests use fixed IDs).
func WithIDGenerator(gen idgen.Generator) Option {
	return func(m *Manager) { m.store = NewStore(gen) }
}

// New creates a Manager.
func New(cfg *Config, logger *slog.Logger, opts ...Option) *Manager {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:     cfg,
		logger:  logger,
		store:   NewStore(nil),
		cursors: make(map[string]string),
	}
	for _, o := range opts {
		o(m)
	}
	m.hub = NewHub(WithHubLogger(logger), WithSubscriberBuffer(cfg.SubBuffer))
	return m
}

// CreateRequest carries the canvas_create arguments.
type CreateRequest struct {
	Name       string           `json:"name,omitempty"`
	DeviceID   string           `json:"device_id,omitempty"`
	Size       string           `json:"size,omitempty"`
	Components []a2ui.Component `json:"components,omitempty"`
}

// Create registers a new surface at version 0. An initial component batch,
// when given, is validated up front and then applied exactly like a
// canvas_update call: the surface ends at version 1 and subscribers get a
// full render.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Info, error) {
	preset := req.Size
	if preset == "" {
		preset = m.cfg.DefaultSize
	}
	size, err := SizeFromPreset(preset)
	if err != nil {
		return nil, err
	}

	// Validate before the surface exists: a bad batch must not leave an
	// empty surface behind.
	var normalized []a2ui.Component
	if len(req.Components) > 0 {
		normalized, err = a2ui.Normalize(req.Components, m.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, err)
		}
	}

	surface, err := m.store.Create("", func(s *Surface) {
		s.Name = req.Name
		s.DeviceID = req.DeviceID
		s.Size = size
	})
	if err != nil {
		return nil, err
	}

	if len(normalized) > 0 {
		surface, err = m.store.Update(surface.ID,
			func(s *Surface) error {
				s.Components = a2ui.EnsureRoot(a2ui.MergeByID(s.Components, normalized, m.logger))
				return nil
			},
			func(s Surface) {
				m.hub.Publish(s.ID, FullRender(s))
			})
		if err != nil {
			return nil, err
		}
	}

	if req.DeviceID != "" {
		m.devMu.Lock()
		m.cursors[req.DeviceID] = surface.ID
		m.devMu.Unlock()
	}

	m.logger.Info("canvas: surface created",
		"surface_id", surface.ID, "name", req.Name, "device_id", req.DeviceID, "size", size.Preset)
	info := m.info(surface)
	return &info, nil
}

// UpdateComponents merges a component batch into a surface's tree and
// broadcasts a full render. Validation happens before any state changes: a
// bad batch leaves tree and version untouched.
func (m *Manager) UpdateComponents(ctx context.Context, surfaceID string, comps []a2ui.Component) (Surface, error) {
	normalized, err := a2ui.Normalize(comps, m.logger)
	if err != nil {
		return Surface{}, fmt.Errorf("%w: %s", ErrInvalidPayload, err)
	}

	snap, err := m.store.Update(surfaceID,
		func(s *Surface) error {
			merged := a2ui.MergeByID(s.Components, normalized, m.logger)
			s.Components = a2ui.EnsureRoot(merged)
			return nil
		},
		func(s Surface) {
			m.hub.Publish(surfaceID, FullRender(s))
		})
	if err != nil {
		return Surface{}, err
	}

	m.logger.Debug("canvas: components updated",
		"surface_id", surfaceID, "version", snap.Version, "components", len(snap.Components))
	return snap, nil
}

// SetData sets one data-model value at a JSON Pointer path and broadcasts a
// data patch carrying only that path. The component tree never changes.
func (m *Manager) SetData(ctx context.Context, surfaceID, path string, value any) (Surface, error) {
	snap, err := m.store.Update(surfaceID,
		func(s *Surface) error {
			model := a2ui.CloneMap(s.DataModel)
			if model == nil {
				model = make(map[string]any)
			}
			if err := a2ui.SetPointer(model, path, value); err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidPayload, err)
			}
			s.DataModel = model
			return nil
		},
		func(s Surface) {
			m.hub.Publish(surfaceID, DataPatch(s, map[string]any{path: value}))
		})
	if err != nil {
		return Surface{}, err
	}

	m.logger.Debug("canvas: data updated", "surface_id", surfaceID, "version", snap.Version, "path", path)
	return snap, nil
}

// Close removes a surface: the close message is published first, then the
// surface disappears from the registry, then all subscribers are detached.
func (m *Manager) Close(ctx context.Context, surfaceID string) error {
	err := m.store.Remove(surfaceID, func(s Surface) {
		m.hub.Publish(surfaceID, CloseMessage(s))
	})
	if err != nil {
		return err
	}
	m.hub.Teardown(surfaceID)

	m.devMu.Lock()
	for device, cursor := range m.cursors {
		if cursor == surfaceID {
			delete(m.cursors, device)
		}
	}
	m.devMu.Unlock()

	m.logger.Info("canvas: surface closed", "surface_id", surfaceID)
	return nil
}

// List returns surface summaries in creation order, optionally filtered by
// device.
func (m *Manager) List(ctx context.Context, deviceID string) []Info {
	var out []Info
	for _, s := range m.store.List() {
		if deviceID != "" && s.DeviceID != deviceID {
			continue
		}
		out = append(out, m.info(s))
	}
	return out
}

// Get returns the full state of a surface.
func (m *Manager) Get(ctx context.Context, surfaceID string) (Surface, error) {
	return m.store.Get(surfaceID)
}

// Show resolves which surface a device should display and moves the
// device's cursor. Navigation is "current", "previous", "next", or
// "latest". Show never mutates surface state and never bumps a version;
// actually switching the display is the caster's job.
func (m *Manager) Show(ctx context.Context, deviceID, navigation string) (*Info, error) {
	if navigation == "" {
		navigation = "current"
	}

	surfaces := m.List(ctx, deviceID)
	if len(surfaces) == 0 {
		return nil, fmt.Errorf("%w: no surfaces for device %q", ErrNotFound, deviceID)
	}

	m.devMu.Lock()
	defer m.devMu.Unlock()
	cursor := m.cursors[deviceID]

	idx := -1
	for i, s := range surfaces {
		if s.SurfaceID == cursor {
			idx = i
			break
		}
	}

	var target Info
	switch navigation {
	case "current":
		if idx >= 0 {
			target = surfaces[idx]
		} else {
			target = surfaces[len(surfaces)-1]
		}
	case "latest":
		target = surfaces[len(surfaces)-1]
	case "previous":
		if idx <= 0 {
			return nil, fmt.Errorf("%w: no earlier surface for device %q", ErrNotFound, deviceID)
		}
		target = surfaces[idx-1]
	case "next":
		if idx < 0 {
			target = surfaces[len(surfaces)-1]
		} else if idx >= len(surfaces)-1 {
			return nil, fmt.Errorf("%w: no later surface for device %q", ErrNotFound, deviceID)
		} else {
			target = surfaces[idx+1]
		}
	default:
		return nil, fmt.Errorf("%w: invalid navigation %q", ErrInvalidPayload, navigation)
	}

	m.cursors[deviceID] = target.SurfaceID
	m.logger.Info("canvas: device navigated",
		"device_id", deviceID, "surface_id", target.SurfaceID, "navigation", navigation)
	return &target, nil
}

// Subscribe attaches a receiver to a surface's update stream. The first
// message is a full snapshot of the state at attach time; everything after
// follows in version order.
func (m *Manager) Subscribe(surfaceID string) (*Subscription, error) {
	var sub *Subscription
	err := m.store.View(surfaceID, func(s Surface) {
		sub = m.hub.Subscribe(surfaceID, FullRender(s))
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Subscribers returns the live subscriber count for a surface.
func (m *Manager) Subscribers(surfaceID string) int {
	return m.hub.Count(surfaceID)
}

// Config returns the manager's resolved configuration.
func (m *Manager) Config() *Config { return m.cfg }

func (m *Manager) info(s Surface) Info {
	localURL, wsURL := m.cfg.SurfaceURLs(s.ID)
	return Info{
		SurfaceID:   s.ID,
		Name:        s.Name,
		DeviceID:    s.DeviceID,
		Size:        s.Size,
		Version:     s.Version,
		LocalURL:    localURL,
		WSURL:       wsURL,
		CreatedAt:   s.CreatedAt,
		Subscribers: m.hub.Count(s.ID),
	}
}
