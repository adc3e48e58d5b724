package rotator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"driveorient/idgen"
	"driveorient/kit"
)

// RegisterMCP registers the orientation tools on an MCP server. Every
// endpoint runs behind the shared middleware chain.
func (s *Session) RegisterMCP(srv *mcp.Server) {
	wrap := s.endpointChain()
	s.registerStatusTool(srv, wrap)
	s.registerRotateTool(srv, wrap)
	s.registerActionTool(srv, wrap, "orient_flip",
		"Flip the previewed media horizontally.", ActionFlip)
	s.registerActionTool(srv, wrap, "orient_reset",
		"Reset the previewed media to its original orientation.", ActionReset)
	s.registerGetTool(srv, wrap)
	s.registerListTool(srv, wrap)
}

// endpointChain tags each tool call with request and session identifiers
// and logs failures once, at the edge.
func (s *Session) endpointChain() func(kit.Endpoint) kit.Endpoint {
	newID := idgen.Prefixed("req_", idgen.Default)

	tag := func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			ctx = kit.WithRequestID(ctx, newID())
			ctx = kit.WithSessionID(ctx, s.id)
			return next(ctx, req)
		}
	}
	logFailure := func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			resp, err := next(ctx, req)
			if err != nil {
				s.logger.Warn("rotator: tool call failed",
					"transport", kit.GetTransport(ctx),
					"request_id", kit.GetRequestID(ctx),
					"session_id", kit.GetSessionID(ctx),
					"error", err)
			}
			return resp, err
		}
	}
	return kit.Chain(tag, logFailure)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sc["required"] = required
	}
	return sc
}

func noArgsDecode(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return &kit.MCPDecodeResult{Request: nil}, nil
}

// --- status ---

func (s *Session) registerStatusTool(srv *mcp.Server, wrap func(kit.Endpoint) kit.Endpoint) {
	tool := &mcp.Tool{
		Name:        "orient_status",
		Description: "Current session state: file context, orientation, search phase.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Snapshot(ctx)
	}

	kit.RegisterMCPTool(srv, tool, wrap(endpoint), noArgsDecode)
}

// --- rotate ---

type rotateRequest struct {
	Direction string `json:"direction"`
}

func (s *Session) registerRotateTool(srv *mcp.Server, wrap func(kit.Endpoint) kit.Endpoint) {
	tool := &mcp.Tool{
		Name:        "orient_rotate",
		Description: "Rotate the previewed media a quarter turn left or right.",
		InputSchema: inputSchema(map[string]any{
			"direction": map[string]any{
				"type": "string", "enum": []string{"left", "right"},
				"description": "Rotation direction",
			},
		}, []string{"direction"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*rotateRequest)
		var a Action
		switch r.Direction {
		case "left":
			a = ActionRotateLeft
		case "right":
			a = ActionRotateRight
		default:
			return nil, fmt.Errorf("direction must be \"left\" or \"right\", got %q", r.Direction)
		}
		return s.Do(ctx, a)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r rotateRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, wrap(endpoint), decode)
}

// --- flip / reset ---

func (s *Session) registerActionTool(srv *mcp.Server, wrap func(kit.Endpoint) kit.Endpoint, name, desc string, a Action) {
	tool := &mcp.Tool{
		Name:        name,
		Description: desc,
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Do(ctx, a)
	}

	kit.RegisterMCPTool(srv, tool, wrap(endpoint), noArgsDecode)
}

// --- get ---

type getRequest struct {
	FileID string `json:"file_id"`
}

func (s *Session) registerGetTool(srv *mcp.Server, wrap func(kit.Endpoint) kit.Endpoint) {
	tool := &mcp.Tool{
		Name:        "orient_get",
		Description: "Read the saved orientation and action history count for a Drive file identifier.",
		InputSchema: inputSchema(map[string]any{
			"file_id": map[string]any{"type": "string", "description": "Drive file identifier"},
		}, []string{"file_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*getRequest)
		if r.FileID == "" {
			return nil, errors.New("file_id is required")
		}
		st, err := s.Saved(ctx, r.FileID)
		if err != nil {
			return nil, err
		}
		n, err := s.ActionCount(ctx, r.FileID)
		if err != nil {
			return nil, err
		}
		if st == nil {
			return map[string]any{"file_id": r.FileID, "saved": false, "action_count": n}, nil
		}
		return map[string]any{"file_id": r.FileID, "saved": true, "state": st, "action_count": n}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r getRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, wrap(endpoint), decode)
}

// --- list ---

func (s *Session) registerListTool(srv *mcp.Server, wrap func(kit.Endpoint) kit.Endpoint) {
	tool := &mcp.Tool{
		Name:        "orient_list",
		Description: "List all saved orientations, most recently updated first.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		recs, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		if recs == nil {
			recs = []Record{}
		}
		return map[string]any{"orientations": recs, "count": len(recs)}, nil
	}

	kit.RegisterMCPTool(srv, tool, wrap(endpoint), noArgsDecode)
}
