package domain

import (
	"errors"
	"testing"

	"github.com/asherp/go-for-launch/pkg/geom"
)

func TestAppendOrdering(t *testing.T) {
	rec := NewRecording("alice")

	if err := rec.Append(RecordedEvent{Timestamp: 0, Action: ActionCheckpoint}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := rec.Append(RecordedEvent{Timestamp: 1.5, Action: ActionJump}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Equal timestamps are legal and keep insertion order
	if err := rec.Append(RecordedEvent{Timestamp: 1.5, Action: ActionMouseClick}); err != nil {
		t.Fatalf("Equal timestamp rejected: %v", err)
	}

	// An event from the past is not
	err := rec.Append(RecordedEvent{Timestamp: 1.0, Action: ActionJump})
	if !errors.Is(err, ErrEventOutOfOrder) {
		t.Errorf("Expected ErrEventOutOfOrder, got %v", err)
	}

	if rec.Len() != 3 {
		t.Errorf("Expected 3 events, got %d", rec.Len())
	}
	if rec.Duration() != 1.5 {
		t.Errorf("Expected duration 1.5, got %v", rec.Duration())
	}
}

func TestSealRejectsAppend(t *testing.T) {
	rec := NewRecording("alice")
	rec.Seal()

	err := rec.Append(RecordedEvent{Timestamp: 0, Action: ActionJump})
	if !errors.Is(err, ErrRecordingSealed) {
		t.Errorf("Expected ErrRecordingSealed, got %v", err)
	}
	if !rec.Sealed() {
		t.Error("Expected Sealed()=true")
	}
}

func TestSnapshotIndexes(t *testing.T) {
	rec := NewRecording("alice")

	// No snapshots at all
	if rec.FirstSnapshotIndex() != -1 || rec.LastSnapshotIndex() != -1 {
		t.Error("Expected -1 on empty recording")
	}

	rec.Append(RecordedEvent{Timestamp: 0, Action: ActionFollowStop}) // no snapshot
	rec.Append(RecordedEvent{
		Timestamp: 1,
		Action:    ActionCheckpoint,
		Snapshot:  &Snapshot{Position: geom.Vec{X: 1, Y: 2}},
	})
	rec.Append(RecordedEvent{Timestamp: 2, Action: ActionFollowStop})
	rec.Append(RecordedEvent{
		Timestamp: 3,
		Action:    ActionCheckpoint,
		Snapshot:  &Snapshot{Position: geom.Vec{X: 5, Y: 6}},
	})

	if idx := rec.FirstSnapshotIndex(); idx != 1 {
		t.Errorf("Expected first snapshot at 1, got %d", idx)
	}
	if idx := rec.LastSnapshotIndex(); idx != 3 {
		t.Errorf("Expected last snapshot at 3, got %d", idx)
	}
}

func TestParseAction(t *testing.T) {
	cases := map[string]ActionType{
		"move_up":             ActionMoveUp,
		"MOVE_RIGHT":          ActionMoveRight, // case-insensitive
		"position_checkpoint": ActionCheckpoint,
		"npc_follow_start":    ActionFollowStart,
		"garbage":             ActionUnknown,
	}
	for s, want := range cases {
		if got := ParseAction(s); got != want {
			t.Errorf("ParseAction(%q) = %v, want %v", s, got, want)
		}
	}

	// Roundtrip through String for every known action
	for s, a := range actionStringToCmd {
		if a.String() != s {
			t.Errorf("String roundtrip broken for %q: got %q", s, a.String())
		}
	}
}

func TestAxis(t *testing.T) {
	dx, dy := ActionMoveUp.Axis()
	if dx != 0 || dy != -1 {
		t.Errorf("move_up axis = (%d,%d), want (0,-1)", dx, dy)
	}
	dx, dy = ActionJump.Axis()
	if dx != 0 || dy != 0 {
		t.Errorf("non-directional axis = (%d,%d), want (0,0)", dx, dy)
	}
	if ActionJump.IsDirectional() {
		t.Error("jump must not be directional")
	}
	if !ActionMoveLeft.IsDirectional() {
		t.Error("move_left must be directional")
	}
}
