package store

import (
	"context"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"driveorient/orientation"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "orient.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := orientation.State{Angle: 180, FlipX: true}
	if err := s.Save(ctx, "abc", want); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("Load(abc): got nil")
	}
	if *got != want {
		t.Fatalf("Load(abc): got %v, want %v", *got, want)
	}
}

func TestLoadMissing(t *testing.T) {
	s := testStore(t)

	got, err := s.Load(context.Background(), "never-saved")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("Load(missing): got %v, want nil", *got)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "f1", orientation.State{Angle: 90}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "f1", orientation.State{Angle: 270, FlipX: true}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "f1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Angle != 270 || !got.FlipX {
		t.Fatalf("after overwrite: got %v", *got)
	}
}

func TestSaveEmptyFileID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "", orientation.State{Angle: 90}); err != nil {
		t.Fatalf("Save(empty): got %v, want nil", err)
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("List after empty save: got %d records", len(recs))
	}
}

func TestSaveNormalizesAngle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "f2", orientation.State{Angle: -90}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "f2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Angle != 270 {
		t.Fatalf("angle: got %d, want 270", got.Angle)
	}
}

func TestList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, id, orientation.State{Angle: 90}); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("List: got %d records, want 3", len(recs))
	}
	for _, r := range recs {
		if r.State.Angle != 90 {
			t.Errorf("record %s: angle %d", r.FileID, r.State.Angle)
		}
	}
}
