package domain

import "github.com/asherp/go-for-launch/pkg/geom"

// Snapshot - "наземная правда" о положении субъекта в момент события.
// Именно по этим данным Оракул интерполирует ожидаемую позицию.
type Snapshot struct {
	Position geom.Vec  // Позиция в пикселях мира
	Floor    string    // Имя этажа/слоя
	ZHeight  float64   // Высота над полом (прыжки, лестницы)
	Tile     *geom.Vec // Позиция в тайлах (опционально - есть не у всех движков)
}

// RecordedEvent - одно записанное событие ввода или состояния.
// Timestamp - секунды от начала захвата (float, >= 0).
// Большинство событий несут Snapshot; события без позиции (например,
// npc_follow_stop) участвуют в планировщике, но не в интерполяции.
type RecordedEvent struct {
	Timestamp float64
	Action    ActionType
	Pressed   bool
	Snapshot  *Snapshot

	// --- Полезная нагрузка конкретных действий ---

	// mouse_click (только pressed)
	ClickPos *geom.Vec

	// floor_change
	FromFloor string
	ToFloor   string

	// npc_follow_start
	NpcID          string
	NpcPos         *geom.Vec
	FollowDistance float64

	// object_interaction
	ObjectID    string
	WasAttached bool
}

// HasSnapshot возвращает true, если событие несет данные о позиции
func (e *RecordedEvent) HasSnapshot() bool {
	return e.Snapshot != nil
}
