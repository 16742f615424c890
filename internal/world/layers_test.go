package world

import (
	"testing"

	"github.com/asherp/go-for-launch/pkg/geom"
)

func TestRegistryPlaceAndMove(t *testing.T) {
	r := NewRegistry("GroundFloor", "Floor1")

	r.Place("alice", "GroundFloor")
	r.Place("bob", "GroundFloor")

	if got := r.LayerOf("alice"); got != "GroundFloor" {
		t.Errorf("Expected GroundFloor, got %q", got)
	}

	// Move is atomic: after it returns, the agent is on exactly one layer
	if err := r.Move("alice", "Floor1"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if got := r.LayerOf("alice"); got != "Floor1" {
		t.Errorf("Expected Floor1, got %q", got)
	}

	ground := r.AgentsOn("GroundFloor")
	if len(ground) != 1 || ground[0] != "bob" {
		t.Errorf("Expected only bob on GroundFloor, got %v", ground)
	}
	up := r.AgentsOn("Floor1")
	if len(up) != 1 || up[0] != "alice" {
		t.Errorf("Expected only alice on Floor1, got %v", up)
	}
}

func TestRegistryMoveUnplacedAgent(t *testing.T) {
	r := NewRegistry()
	if err := r.Move("ghost", "Floor1"); err == nil {
		t.Error("Expected error moving an unplaced agent")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Place("alice", "GroundFloor")
	r.Remove("alice")

	if r.LayerOf("alice") != "" {
		t.Error("Expected alice to be unplaced after Remove")
	}
	if len(r.AgentsOn("GroundFloor")) != 0 {
		t.Error("Expected GroundFloor to be empty")
	}
}

func TestBodyApplyInputDiagonal(t *testing.T) {
	b := NewBody("alice", geom.Vec{}, "GroundFloor", 100)

	// Diagonal input is normalized: one second at speed 100 covers 100px
	b.ApplyInput(1, 1, 1.0)
	if d := b.Position().DistanceTo(geom.Vec{}); d < 99.9 || d > 100.1 {
		t.Errorf("Expected ~100px displacement, got %v", d)
	}
}

func TestLineNavigatorArrivesExactly(t *testing.T) {
	b := NewBody("alice", geom.Vec{}, "GroundFloor", 100)
	nav := NewLineNavigator(b, 50, 1)

	target := geom.Vec{X: 100, Y: 0}
	nav.NavigateTo(target)

	if nav.Arrived() {
		t.Error("Expected not arrived yet")
	}

	// 3 seconds at 50px/s overshoots 100px; last step must clamp into target
	for i := 0; i < 30; i++ {
		nav.Tick(0.1)
	}
	if b.Position() != target {
		t.Errorf("Expected exact arrival at %v, got %v", target, b.Position())
	}
	if !nav.Arrived() {
		t.Error("Expected Arrived()=true after reaching target")
	}
}

func TestLineNavigatorStop(t *testing.T) {
	b := NewBody("alice", geom.Vec{}, "GroundFloor", 100)
	nav := NewLineNavigator(b, 50, 1)

	nav.NavigateTo(geom.Vec{X: 100, Y: 0})
	nav.Stop()
	nav.Tick(1.0)

	if b.Position() != (geom.Vec{}) {
		t.Errorf("Expected body to stay put after Stop, got %v", b.Position())
	}
}
