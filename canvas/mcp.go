// CLAUDE:SUMMARY Registers the seven canvas MCP tools — create, update, data, close, list, show, get.
package canvas

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/uijit/a2ui"
	"github.com/hazyhaar/uijit/audit"
	"github.com/hazyhaar/uijit/kit"
)

// RegisterMCP registers the canvas tools on an MCP server.
func (m *Manager) RegisterMCP(srv *mcp.Server) {
	m.registerCreateTool(srv)
	m.registerUpdateTool(srv)
	m.registerDataTool(srv)
	m.registerCloseTool(srv)
	m.registerListTool(srv)
	m.registerShowTool(srv)
	m.registerGetTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// wrap applies the audit middleware when an audit logger is attached.
func (m *Manager) wrap(action string, endpoint kit.Endpoint) kit.Endpoint {
	if m.auditor == nil {
		return endpoint
	}
	return audit.Middleware(m.auditor, action)(endpoint)
}

// --- canvas_create ---

func (m *Manager) registerCreateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "canvas_create",
		Description: "Create a NEW canvas surface with NEW content. Only use this to render new visualizations; to display an existing surface use canvas_show.",
		InputSchema: inputSchema(map[string]any{
			"name":      map[string]any{"type": "string", "description": "Optional friendly name for the canvas"},
			"device_id": map[string]any{"type": "string", "description": "Device (TV) to associate with this surface, e.g. 'Living Room TV'"},
			"size":      map[string]any{"type": "string", "enum": []any{"tv_1080p", "tv_4k", "phone", "tablet", "square", "auto"}, "description": "Canvas size preset (default from config)"},
			"components": map[string]any{"type": "array", "items": map[string]any{"type": "object"},
				"description": "Optional initial component tree in A2UI format"},
		}, nil),
	}

	type createResponse struct {
		Success bool `json:"success"`
		Info
	}

	endpoint := m.wrap("canvas_create", func(ctx context.Context, req any) (any, error) {
		r := req.(*CreateRequest)
		info, err := m.Create(ctx, *r)
		if err != nil {
			return nil, err
		}
		return &createResponse{Success: true, Info: *info}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r CreateRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				if r.DeviceID != "" {
					ctx = kit.WithDeviceID(ctx, r.DeviceID)
				}
				return kit.WithTransport(ctx, "mcp_stdio")
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- canvas_update ---

type updateRequest struct {
	SurfaceID  string           `json:"surface_id"`
	Components []a2ui.Component `json:"components"`
}

func (m *Manager) registerUpdateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "canvas_update",
		Description: "Update components on a canvas surface using A2UI format. Components are merged by ID: existing IDs are replaced, new IDs are added.",
		InputSchema: inputSchema(map[string]any{
			"surface_id": map[string]any{"type": "string", "description": "Target surface ID"},
			"components": map[string]any{"type": "array", "items": map[string]any{"type": "object"}, "description": "A2UI component definitions"},
		}, []string{"surface_id", "components"}),
	}

	type updateResponse struct {
		Success         bool   `json:"success"`
		SurfaceID       string `json:"surface_id"`
		Version         int64  `json:"version"`
		ComponentsCount int    `json:"components_count"`
	}

	endpoint := m.wrap("canvas_update", func(ctx context.Context, req any) (any, error) {
		r := req.(*updateRequest)
		snap, err := m.UpdateComponents(ctx, r.SurfaceID, r.Components)
		if err != nil {
			return nil, err
		}
		return &updateResponse{
			Success:         true,
			SurfaceID:       snap.ID,
			Version:         snap.Version,
			ComponentsCount: len(snap.Components),
		}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r updateRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- canvas_data ---

type dataRequest struct {
	SurfaceID string `json:"surface_id"`
	Path      string `json:"path"`
	Value     any    `json:"value"`
}

func (m *Manager) registerDataTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "canvas_data",
		Description: "Update the data model on a canvas without re-rendering components. Receivers re-bind the changed values in place.",
		InputSchema: inputSchema(map[string]any{
			"surface_id": map[string]any{"type": "string", "description": "Target surface ID"},
			"path":       map[string]any{"type": "string", "description": "JSON Pointer path, e.g. '/user/name'"},
			"value":      map[string]any{"description": "Value to set at the path"},
		}, []string{"surface_id", "path", "value"}),
	}

	type dataResponse struct {
		Success   bool   `json:"success"`
		SurfaceID string `json:"surface_id"`
		Version   int64  `json:"version"`
		Path      string `json:"path"`
	}

	endpoint := m.wrap("canvas_data", func(ctx context.Context, req any) (any, error) {
		r := req.(*dataRequest)
		snap, err := m.SetData(ctx, r.SurfaceID, r.Path, r.Value)
		if err != nil {
			return nil, err
		}
		return &dataResponse{Success: true, SurfaceID: snap.ID, Version: snap.Version, Path: r.Path}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r dataRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- canvas_close ---

type closeRequest struct {
	SurfaceID string `json:"surface_id"`
}

func (m *Manager) registerCloseTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "canvas_close",
		Description: "Close and delete a canvas surface. Connected receivers get a close notification and are disconnected.",
		InputSchema: inputSchema(map[string]any{
			"surface_id": map[string]any{"type": "string", "description": "Surface ID to close"},
		}, []string{"surface_id"}),
	}

	endpoint := m.wrap("canvas_close", func(ctx context.Context, req any) (any, error) {
		r := req.(*closeRequest)
		if err := m.Close(ctx, r.SurfaceID); err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "surface_id": r.SurfaceID}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r closeRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- canvas_list ---

type listRequest struct {
	DeviceID string `json:"device_id"`
}

func (m *Manager) registerListTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "canvas_list",
		Description: "List all canvas surfaces, optionally filtered by device.",
		InputSchema: inputSchema(map[string]any{
			"device_id": map[string]any{"type": "string", "description": "Optional device ID to filter surfaces by"},
		}, nil),
	}

	type listResponse struct {
		Success  bool   `json:"success"`
		Count    int    `json:"count"`
		Surfaces []Info `json:"surfaces"`
	}

	endpoint := m.wrap("canvas_list", func(ctx context.Context, req any) (any, error) {
		r := req.(*listRequest)
		surfaces := m.List(ctx, r.DeviceID)
		if surfaces == nil {
			surfaces = []Info{}
		}
		return &listResponse{Success: true, Count: len(surfaces), Surfaces: surfaces}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r listRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- canvas_show ---

type showRequest struct {
	DeviceID   string `json:"device_id"`
	Navigation string `json:"navigation"`
}

func (m *Manager) registerShowTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "canvas_show",
		Description: "Show an existing canvas surface on a TV. Use this when the user asks to 'show latest', 'show previous', 'go back', or display an existing surface. Returns the surface info and URLs for casting.",
		InputSchema: inputSchema(map[string]any{
			"device_id":  map[string]any{"type": "string", "description": "Device (TV) to show the surface on"},
			"navigation": map[string]any{"type": "string", "enum": []any{"current", "previous", "next", "latest"}, "description": "Which surface to show (default: current)"},
		}, []string{"device_id"}),
	}

	type showResponse struct {
		Success bool `json:"success"`
		Info
		Navigation string `json:"navigation"`
	}

	endpoint := m.wrap("canvas_show", func(ctx context.Context, req any) (any, error) {
		r := req.(*showRequest)
		info, err := m.Show(ctx, r.DeviceID, r.Navigation)
		if err != nil {
			return nil, err
		}
		nav := r.Navigation
		if nav == "" {
			nav = "current"
		}
		return &showResponse{Success: true, Info: *info, Navigation: nav}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r showRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				ctx = kit.WithDeviceID(ctx, r.DeviceID)
				return kit.WithTransport(ctx, "mcp_stdio")
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- canvas_get ---

type getRequest struct {
	SurfaceID string `json:"surface_id"`
}

func (m *Manager) registerGetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "canvas_get",
		Description: "Get the full state of a canvas (components and data model).",
		InputSchema: inputSchema(map[string]any{
			"surface_id": map[string]any{"type": "string", "description": "The surface ID to retrieve"},
		}, []string{"surface_id"}),
	}

	type getResponse struct {
		Success bool `json:"success"`
		Surface
	}

	endpoint := m.wrap("canvas_get", func(ctx context.Context, req any) (any, error) {
		r := req.(*getRequest)
		snap, err := m.Get(ctx, r.SurfaceID)
		if err != nil {
			return nil, err
		}
		return &getResponse{Success: true, Surface: snap}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r getRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
