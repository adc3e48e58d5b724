package rotator

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	_ "modernc.org/sqlite"

	"driveorient/orientation"
)

var testImpl = &mcp.Implementation{Name: "driveorient-test", Version: "0.1.0"}

// mcpSession starts a Session over a fake driver, registers the MCP tools,
// and returns a connected client session that can call them end-to-end.
func mcpSession(t *testing.T) (*Session, *fakeDriver, *mcp.ClientSession) {
	t.Helper()

	st := testStore(t)
	drv := &fakeDriver{url: "https://drive.google.com/file/d/f1/view", tgt: &fakeTarget{}}
	s := startSession(t, testConfig(), drv, st)

	waitFor(t, "session bound", func() bool {
		snap, err := s.Snapshot(context.Background())
		return err == nil && snap.FileID == "f1" && snap.HasTarget
	})

	srv := mcp.NewServer(testImpl, nil)
	s.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() {
		_ = srv.Run(ctx, serverT)
	}()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return s, drv, session
}

// callTool invokes a tool and returns the JSON text from the first TextContent.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) tool error: %s", name, tc.Text)
	}
	return tc.Text
}

func TestMCPRotateAndStatus(t *testing.T) {
	_, drv, session := mcpSession(t)

	var st orientation.State
	if err := json.Unmarshal(
		[]byte(callTool(t, session, "orient_rotate", map[string]any{"direction": "right"})),
		&st); err != nil {
		t.Fatal(err)
	}
	if want := (orientation.State{Angle: 90}); st != want {
		t.Errorf("rotate right: %v, want %v", st, want)
	}

	if err := json.Unmarshal(
		[]byte(callTool(t, session, "orient_flip", map[string]any{})), &st); err != nil {
		t.Fatal(err)
	}
	if want := (orientation.State{Angle: 90, FlipX: true}); st != want {
		t.Errorf("flip: %v, want %v", st, want)
	}

	var snap Snapshot
	if err := json.Unmarshal(
		[]byte(callTool(t, session, "orient_status", map[string]any{})), &snap); err != nil {
		t.Fatal(err)
	}
	if want := (orientation.State{Angle: 90, FlipX: true}); snap.State != want {
		t.Errorf("status state: %v, want %v", snap.State, want)
	}
	if snap.FileID != "f1" {
		t.Errorf("status file_id: %q, want f1", snap.FileID)
	}

	if got, ok := drv.tgt.last(); !ok || got != (orientation.State{Angle: 90, FlipX: true}) {
		t.Errorf("target last applied: %v (ok=%v)", got, ok)
	}
}

func TestMCPRotateBadDirection(t *testing.T) {
	_, _, session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "orient_rotate",
		Arguments: map[string]any{"direction": "up"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("rotate up: want tool error")
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	if !strings.Contains(tc.Text, "direction must be") {
		t.Errorf("error text: %q", tc.Text)
	}
}

func TestMCPGetAndList(t *testing.T) {
	s, _, session := mcpSession(t)
	ctx := context.Background()

	if _, err := s.Do(ctx, ActionRotateLeft); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "f1 saved", func() bool {
		saved, err := s.Saved(ctx, "f1")
		return err == nil && saved != nil
	})
	waitFor(t, "f1 action logged", func() bool {
		n, err := s.ActionCount(ctx, "f1")
		return err == nil && n >= 1
	})

	var got struct {
		FileID      string             `json:"file_id"`
		Saved       bool               `json:"saved"`
		State       *orientation.State `json:"state"`
		ActionCount int                `json:"action_count"`
	}
	if err := json.Unmarshal(
		[]byte(callTool(t, session, "orient_get", map[string]any{"file_id": "f1"})),
		&got); err != nil {
		t.Fatal(err)
	}
	if !got.Saved || got.State == nil || got.State.Angle != 270 {
		t.Errorf("orient_get f1: %+v", got)
	}
	if got.ActionCount < 1 {
		t.Errorf("orient_get f1 action_count: %d, want >= 1", got.ActionCount)
	}

	if err := json.Unmarshal(
		[]byte(callTool(t, session, "orient_get", map[string]any{"file_id": "missing"})),
		&got); err != nil {
		t.Fatal(err)
	}
	if got.Saved {
		t.Error("orient_get missing: saved=true")
	}
	if got.ActionCount != 0 {
		t.Errorf("orient_get missing action_count: %d, want 0", got.ActionCount)
	}

	var list struct {
		Count        int      `json:"count"`
		Orientations []Record `json:"orientations"`
	}
	if err := json.Unmarshal(
		[]byte(callTool(t, session, "orient_list", map[string]any{})), &list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 1 || len(list.Orientations) != 1 || list.Orientations[0].FileID != "f1" {
		t.Errorf("orient_list: %+v", list)
	}
}
