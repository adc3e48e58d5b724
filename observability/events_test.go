package observability

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"driveorient/dbopen"
)

func TestLogAction(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	l := NewEventLogger(db)
	ctx := context.Background()

	l.LogAction(ctx, ActionEvent{SessionID: "sess_1", FileID: "abc", Action: "rotate_right", Angle: 90})
	l.LogAction(ctx, ActionEvent{SessionID: "sess_1", FileID: "abc", Action: "flip", Angle: 90, FlipX: true})
	l.LogAction(ctx, ActionEvent{SessionID: "sess_1", FileID: "other", Action: "reset"})

	n, err := l.CountActions(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("CountActions(abc): got %d, want 2", n)
	}

	total, err := l.CountActions(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("CountActions(all): got %d, want 3", total)
	}
}

func TestLogAction_SwallowsFailure(t *testing.T) {
	// No schema applied: the insert fails, but LogAction must not panic
	// or propagate.
	db := dbopen.OpenMemory(t)
	l := NewEventLogger(db)
	l.LogAction(context.Background(), ActionEvent{Action: "rotate_left"})
}
