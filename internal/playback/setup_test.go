package playback

import (
	"os"
	"testing"

	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/pkg/geom"
	"github.com/asherp/go-for-launch/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	os.Exit(m.Run())
}

// --- Общие фикстуры пакета ---

// checkpointAt - событие-чекпоинт с позицией
func checkpointAt(ts, x, y float64) domain.RecordedEvent {
	return domain.RecordedEvent{
		Timestamp: ts,
		Action:    domain.ActionCheckpoint,
		Snapshot: &domain.Snapshot{
			Position: geom.Vec{X: x, Y: y},
			Floor:    "GroundFloor",
		},
	}
}

// inputAt - направленное событие с позицией
func inputAt(ts float64, action domain.ActionType, pressed bool, x, y float64) domain.RecordedEvent {
	return domain.RecordedEvent{
		Timestamp: ts,
		Action:    action,
		Pressed:   pressed,
		Snapshot: &domain.Snapshot{
			Position: geom.Vec{X: x, Y: y},
			Floor:    "GroundFloor",
		},
	}
}

// makeRecording собирает запись из событий, падая на нарушении инварианта
func makeRecording(t *testing.T, events ...domain.RecordedEvent) *domain.Recording {
	t.Helper()
	rec := domain.NewRecording("alice")
	for _, ev := range events {
		if err := rec.Append(ev); err != nil {
			t.Fatalf("bad fixture: %v", err)
		}
	}
	rec.Seal()
	return rec
}

// stubNav - навигатор, запоминающий последнюю цель
type stubNav struct {
	target *geom.Vec
	stops  int
}

func (n *stubNav) NavigateTo(target geom.Vec) {
	v := target
	n.target = &v
}

func (n *stubNav) Stop() {
	n.stops++
	n.target = nil
}

func (n *stubNav) Arrived() bool {
	return n.target == nil
}

// stubDispatcher - принимающая сторона планировщика для тестов
type stubDispatcher struct {
	pos        geom.Vec
	teleports  int
	dispatched []domain.ActionType
	times      []float64
}

func (d *stubDispatcher) Teleport(snap *domain.Snapshot) {
	d.pos = snap.Position
	d.teleports++
}

func (d *stubDispatcher) LivePosition() geom.Vec {
	return d.pos
}

func (d *stubDispatcher) DispatchEvent(ev *domain.RecordedEvent) {
	d.dispatched = append(d.dispatched, ev.Action)
	d.times = append(d.times, ev.Timestamp)
}

// stubTarget - цель следования
type stubTarget struct {
	id    string
	pos   geom.Vec
	alive bool
}

func (s *stubTarget) SubjectID() string      { return s.id }
func (s *stubTarget) LivePosition() geom.Vec { return s.pos }
func (s *stubTarget) Alive() bool            { return s.alive }
