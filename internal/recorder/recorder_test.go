package recorder

import (
	"testing"

	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/pkg/geom"
)

// fakeSubject - субъект с опциональной способностью транзита
type fakeSubject struct {
	pos     geom.Vec
	floor   string
	transit bool
	speed   float64
}

func (f *fakeSubject) Position() geom.Vec  { return f.pos }
func (f *fakeSubject) Floor() string       { return f.floor }
func (f *fakeSubject) InAutoTransit() bool { return f.transit }
func (f *fakeSubject) Speed() float64      { return f.speed }

func newTestRecorder() (*Recorder, *fakeSubject) {
	subject := &fakeSubject{pos: geom.Vec{X: 10, Y: 20}, floor: "GroundFloor"}
	return NewRecorder("alice", subject, NewConfig()), subject
}

func TestStartCaptureWritesInitialCheckpoint(t *testing.T) {
	r, subject := newTestRecorder()
	r.StartCapture(false)

	rec := r.Recording()
	if rec.Len() != 1 {
		t.Fatalf("Expected 1 event after start, got %d", rec.Len())
	}
	ev := rec.Events[0]
	if ev.Timestamp != 0 || ev.Action != domain.ActionCheckpoint {
		t.Errorf("Expected t=0 checkpoint, got t=%v action=%v", ev.Timestamp, ev.Action)
	}
	if ev.Snapshot == nil || ev.Snapshot.Position != subject.pos {
		t.Error("Initial checkpoint must carry the subject's position")
	}
	if ev.Snapshot.Floor != "GroundFloor" {
		t.Errorf("Expected floor GroundFloor, got %q", ev.Snapshot.Floor)
	}
}

func TestEdgeTriggeredInput(t *testing.T) {
	r, _ := newTestRecorder()
	r.StartCapture(false)
	base := r.Recording().Len()

	// Press, hold, hold, release: exactly two events
	r.SetDirectional(domain.ActionMoveRight, true)
	r.SetDirectional(domain.ActionMoveRight, true)
	r.SetDirectional(domain.ActionMoveRight, true)
	r.SetDirectional(domain.ActionMoveRight, false)

	got := r.Recording().Len() - base
	if got != 2 {
		t.Errorf("Expected 2 edge events, got %d", got)
	}

	events := r.Recording().Events
	if !events[base].Pressed || events[base+1].Pressed {
		t.Error("Expected press then release")
	}
}

func TestPeriodicCheckpoints(t *testing.T) {
	r, _ := newTestRecorder()
	r.StartCapture(false)
	base := r.Recording().Len()

	// 2.5 seconds at 10Hz: checkpoints at ~1.0s and ~2.0s
	for i := 0; i < 25; i++ {
		r.Tick(0.1)
	}

	got := r.Recording().Len() - base
	if got != 2 {
		t.Errorf("Expected 2 periodic checkpoints, got %d", got)
	}
}

func TestCheckpointsSkippedDuringTransit(t *testing.T) {
	r, subject := newTestRecorder()
	subject.transit = true
	subject.speed = 100 // above MinTransitSpeed

	r.StartCapture(false)
	base := r.Recording().Len()

	for i := 0; i < 25; i++ {
		r.Tick(0.1)
	}

	if got := r.Recording().Len() - base; got != 0 {
		t.Errorf("Expected no checkpoints during transit, got %d", got)
	}

	// Slow transit does not suppress checkpoints
	subject.speed = 1
	for i := 0; i < 12; i++ {
		r.Tick(0.1)
	}
	if got := r.Recording().Len() - base; got != 1 {
		t.Errorf("Expected 1 checkpoint during slow transit, got %d", got)
	}
}

func TestClickPositionOnlyOnPress(t *testing.T) {
	r, _ := newTestRecorder()
	r.StartCapture(false)
	base := r.Recording().Len()

	r.Click(geom.Vec{X: 5, Y: 5}, true)
	r.Click(geom.Vec{X: 5, Y: 5}, false)

	events := r.Recording().Events
	if events[base].ClickPos == nil {
		t.Error("Press must carry click position")
	}
	if events[base+1].ClickPos != nil {
		t.Error("Release must not carry click position")
	}
}

func TestFollowStopHasNoSnapshot(t *testing.T) {
	r, _ := newTestRecorder()
	r.StartCapture(false)

	r.FollowStarted("bob", geom.Vec{X: 1, Y: 1}, 48)
	r.FollowStopped()

	events := r.Recording().Events
	last := events[len(events)-1]
	if last.Action != domain.ActionFollowStop {
		t.Fatalf("Expected follow stop, got %v", last.Action)
	}
	if last.HasSnapshot() {
		t.Error("Follow stop must not carry a snapshot")
	}

	start := events[len(events)-2]
	if start.NpcID != "bob" || start.FollowDistance != 48 {
		t.Errorf("Follow start payload broken: %+v", start)
	}
}

func TestStopCaptureSealsRecording(t *testing.T) {
	r, _ := newTestRecorder()
	r.StartCapture(false)
	r.Jump()

	count := r.StopCapture()
	if count != 2 {
		t.Errorf("Expected 2 events, got %d", count)
	}
	if r.Capturing() {
		t.Error("Expected capture to be off")
	}
	if !r.Recording().Sealed() {
		t.Error("Expected recording to be sealed")
	}

	// Events after stop are ignored entirely
	r.Jump()
	if r.Recording().Len() != 2 {
		t.Error("Expected no events after stop")
	}
}

func TestStartCaptureDiscardsPreviousTape(t *testing.T) {
	r, _ := newTestRecorder()
	r.StartCapture(false)
	r.Jump()
	old := r.Recording()

	// Fresh capture replaces the tape
	r.StartCapture(false)
	if r.Recording() == old {
		t.Error("Expected a fresh recording")
	}
	if r.Recording().Len() != 1 {
		t.Errorf("Expected only the initial checkpoint, got %d", r.Recording().Len())
	}
}
