package engine

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/internal/playback"
	"github.com/asherp/go-for-launch/pkg/api"
	"github.com/asherp/go-for-launch/pkg/geom"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := playback.SessionContext{
		PlayerSubject:     "player",
		RecordingsDir:     t.TempDir(),
		Speed:             1.0,
		CorrectionEnabled: true,
	}
	return NewService(ctx, playback.NewConfig())
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestServiceSpawnsPlayerAtDefault(t *testing.T) {
	s := newTestService(t)

	if s.PlayerBody.Floor() != DefaultFloor {
		t.Errorf("Expected %q, got %q", DefaultFloor, s.PlayerBody.Floor())
	}
	if got := s.Orch.Layers().LayerOf("player"); got != DefaultFloor {
		t.Errorf("Expected player registered on %q, got %q", DefaultFloor, got)
	}
}

func TestServiceSpawnsPlayerFromOwnRecording(t *testing.T) {
	dir := t.TempDir()
	ctx := playback.SessionContext{PlayerSubject: "player", RecordingsDir: dir}

	// A prior canonical capture places the player at its first snapshot
	prev := playback.NewOrchestrator(ctx, playback.NewConfig())
	rec := domain.NewRecording("player")
	rec.Append(domain.RecordedEvent{
		Timestamp: 0,
		Action:    domain.ActionCheckpoint,
		Snapshot:  &domain.Snapshot{Position: geom.Vec{X: 77, Y: 88}, Floor: "Floor1"},
	})
	if err := prev.Store().Save(rec); err != nil {
		t.Fatal(err)
	}

	s := NewService(ctx, playback.NewConfig())
	if s.PlayerBody.Position() != (geom.Vec{X: 77, Y: 88}) {
		t.Errorf("Expected spawn at (77,88), got %v", s.PlayerBody.Position())
	}
	if s.PlayerBody.Floor() != "Floor1" {
		t.Errorf("Expected Floor1, got %q", s.PlayerBody.Floor())
	}
}

func TestCaptureGatedOnAllStarted(t *testing.T) {
	s := newTestService(t)

	if s.Recorder.Capturing() {
		t.Fatal("Capture must not run before the session starts")
	}

	// No agents to wait for: ALL_STARTED fires and opens the capture gate
	s.RunHeadless(3, 0.05)
	if !s.Orch.AllStarted() {
		t.Fatal("Expected AllStarted")
	}
	if !s.Recorder.Capturing() {
		t.Error("Expected capture to open on ALL_STARTED")
	}
}

func TestInputCommandDrivesBodyAndRecorder(t *testing.T) {
	s := newTestService(t)
	s.RunHeadless(3, 0.05) // opens the capture gate

	s.ProcessCommand(api.ClientCommand{
		Action:  api.CmdInput,
		Payload: payload(t, api.InputPayload{Action: "move_right", Pressed: true}),
	})
	start := s.PlayerBody.Position()
	s.RunHeadless(10, 0.05)

	if s.PlayerBody.Position().X <= start.X {
		t.Error("Expected the body to move right")
	}

	s.ProcessCommand(api.ClientCommand{
		Action:  api.CmdInput,
		Payload: payload(t, api.InputPayload{Action: "move_right", Pressed: false}),
	})
	s.RunHeadless(1, 0.05)
	stopped := s.PlayerBody.Position()
	s.RunHeadless(5, 0.05)
	if s.PlayerBody.Position() != stopped {
		t.Error("Expected the body to stop after release")
	}

	// The tape holds the initial checkpoint plus both input edges
	var edges int
	for _, ev := range s.Recorder.Recording().Events {
		if ev.Action == domain.ActionMoveRight {
			edges++
		}
	}
	if edges != 2 {
		t.Errorf("Expected 2 recorded edges, got %d", edges)
	}
}

func TestRecordStopAndSaveCommands(t *testing.T) {
	s := newTestService(t)
	s.RunHeadless(3, 0.05)

	s.ProcessCommand(api.ClientCommand{Action: api.CmdRecordStop})
	s.ProcessCommand(api.ClientCommand{Action: api.CmdSave})
	s.RunHeadless(1, 0.05)

	if s.Recorder.Capturing() {
		t.Error("Expected capture stopped")
	}
	if !s.Recorder.Recording().Sealed() {
		t.Error("Expected tape sealed")
	}

	path := s.Orch.Store().PathFor("player")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected recording file at %s: %v", path, err)
	}

	// The saved file loads back as the same tape
	loaded, err := s.Orch.Store().Load("player")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != s.Recorder.Recording().Len() {
		t.Errorf("Expected %d events, got %d", s.Recorder.Recording().Len(), loaded.Len())
	}
}

func TestLoadCommandRejectedDuringCapture(t *testing.T) {
	s := newTestService(t)
	s.RunHeadless(3, 0.05) // capture gate open
	s.ProcessCommand(api.ClientCommand{Action: api.CmdSave})
	s.RunHeadless(1, 0.05)

	// Load while capturing is rejected; the in-memory tape stays untouched
	before := s.Recorder.Recording()
	s.ProcessCommand(api.ClientCommand{Action: api.CmdLoad})
	s.RunHeadless(1, 0.05)
	if s.Recorder.Recording() != before {
		t.Error("Expected the tape untouched while capture is active")
	}
}

func TestLoadCommandReplacesTape(t *testing.T) {
	s := newTestService(t)
	s.RunHeadless(3, 0.05)
	s.ProcessCommand(api.ClientCommand{Action: api.CmdRecordStop})
	s.ProcessCommand(api.ClientCommand{Action: api.CmdSave})
	s.RunHeadless(1, 0.05)

	saved := s.Recorder.Recording().Len()
	s.ProcessCommand(api.ClientCommand{Action: api.CmdLoad})
	s.RunHeadless(1, 0.05)

	if !s.Recorder.Recording().Sealed() {
		t.Error("Loaded tape must be sealed")
	}
	if s.Recorder.Recording().Len() != saved {
		t.Errorf("Expected %d events after load, got %d", saved, s.Recorder.Recording().Len())
	}
}

func TestPlaybackToggle(t *testing.T) {
	s := newTestService(t)

	s.ProcessCommand(api.ClientCommand{Action: api.CmdPlaybackToggle})
	s.RunHeadless(1, 0.05)
	if !s.IsPaused() {
		t.Error("Expected paused")
	}

	s.ProcessCommand(api.ClientCommand{Action: api.CmdPlaybackToggle})
	s.RunHeadless(1, 0.05)
	if s.IsPaused() {
		t.Error("Expected resumed")
	}
}

func TestSaveCaptureOnShutdown(t *testing.T) {
	s := newTestService(t)
	s.RunHeadless(3, 0.05)
	s.ProcessCommand(api.ClientCommand{
		Action:  api.CmdInput,
		Payload: payload(t, api.InputPayload{Action: "move_up", Pressed: true}),
	})
	s.RunHeadless(2, 0.05)

	if err := s.SaveCapture(); err != nil {
		t.Fatalf("SaveCapture failed: %v", err)
	}
	if _, err := os.Stat(s.Orch.Store().PathFor("player")); err != nil {
		t.Errorf("Expected saved file: %v", err)
	}
}

func TestBuildStatusReflectsAgents(t *testing.T) {
	ctx := playback.SessionContext{PlayerSubject: "player", RecordingsDir: t.TempDir()}
	warm := playback.NewOrchestrator(ctx, playback.NewConfig())
	rec := domain.NewRecording("bob")
	rec.Append(domain.RecordedEvent{
		Timestamp: 0,
		Action:    domain.ActionCheckpoint,
		Snapshot:  &domain.Snapshot{Position: geom.Vec{X: 5, Y: 5}, Floor: "GroundFloor"},
	})
	rec.Append(domain.RecordedEvent{
		Timestamp: 1,
		Action:    domain.ActionCheckpoint,
		Snapshot:  &domain.Snapshot{Position: geom.Vec{X: 5, Y: 5}, Floor: "GroundFloor"},
	})
	if err := warm.Store().Save(rec); err != nil {
		t.Fatal(err)
	}

	s := NewService(ctx, playback.NewConfig())
	if _, err := s.Orch.DiscoverAndSpawn(); err != nil {
		t.Fatal(err)
	}
	s.RunHeadless(5, 0.05)

	status := s.BuildStatus()
	if status.Type != "STATUS" {
		t.Errorf("Expected STATUS, got %q", status.Type)
	}
	if len(status.Agents) != 1 {
		t.Fatalf("Expected 1 agent view, got %d", len(status.Agents))
	}
	view := status.Agents[0]
	if view.SubjectID != "bob" || view.Phase != "PLAYING" {
		t.Errorf("Unexpected agent view: %+v", view)
	}
	if view.Pos.X != 5 || view.Pos.Y != 5 {
		t.Errorf("Expected pos (5,5), got %+v", view.Pos)
	}
}
