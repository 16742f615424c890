package domain

import "github.com/asherp/go-for-launch/pkg/geom"

// CorrectionPhase - фаза машины состояний коррекции дрейфа
type CorrectionPhase uint8

const (
	// PhaseFollowing - покой: движением управляет планировщик напрямую
	PhaseFollowing CorrectionPhase = iota
	// PhaseCorrecting - агент догоняет будущую точку рандеву
	PhaseCorrecting
	// PhaseLastWaypoint - последний шанс: цель - финальная позиция записи
	PhaseLastWaypoint
	// PhaseCancelled - терминальная фаза, воспроизведение остановлено
	PhaseCancelled
)

var phaseNames = map[CorrectionPhase]string{
	PhaseFollowing:    "FOLLOWING",
	PhaseCorrecting:   "CORRECTING",
	PhaseLastWaypoint: "LAST_WAYPOINT",
	PhaseCancelled:    "CANCELLED",
}

func (p CorrectionPhase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// CorrectionState - состояние контроллера коррекции одного агента.
// Инвариант: WindowDuration внутри одной последовательности эскалаций
// не убывает - либо держится, либо удваивается.
type CorrectionState struct {
	Phase CorrectionPhase

	// Окно ожидания рандеву (только в Correcting / LastWaypoint)
	WindowStart    float64 // Симулированное время входа в окно
	WindowDuration float64 // Секунды; удваивается при эскалации

	// Точка рандеву
	TargetPosition geom.Vec
	TargetIndex    int // Индекс события-цели в записи (для рескана вперед)
}
