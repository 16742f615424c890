package playback

import (
	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/pkg/geom"
	"github.com/asherp/go-for-launch/pkg/logger"
)

// Dispatcher - принимающая сторона планировщика. Реализуется агентом.
type Dispatcher interface {
	// Teleport жестко ставит агента в снапшот (старт воспроизведения)
	Teleport(snap *domain.Snapshot)
	// LivePosition возвращает живую позицию агента
	LivePosition() geom.Vec
	// DispatchEvent применяет одно созревшее событие как фронт
	// симулированного ввода
	DispatchEvent(ev *domain.RecordedEvent)
}

// Scheduler продвигает курсор по ленте и диспетчеризует созревшие события.
type Scheduler struct {
	cursor     *Cursor
	dispatcher Dispatcher

	speed             float64
	correctionEnabled bool
	started           bool
	finished          bool
}

func NewScheduler(cursor *Cursor, dispatcher Dispatcher) *Scheduler {
	return &Scheduler{cursor: cursor, dispatcher: dispatcher}
}

// Start запускает воспроизведение.
// Требования: загруженная непустая запись; захват не активен (проверяет
// вызывающий - планировщик про рекордер не знает).
// Агент телепортируется в первое событие с позицией; после этого
// инвариант t=0 "actual == expected" проверяется с допуском, и его
// нарушение - warning, а не отказ.
func (s *Scheduler) Start(speed float64, correctionEnabled bool, startTolerance float64) error {
	rec := s.cursor.Recording()
	if rec == nil || rec.Len() == 0 {
		return domain.ErrEmptyRecording
	}

	firstIdx := rec.FirstSnapshotIndex()
	if firstIdx < 0 {
		return domain.ErrNoPositionData
	}

	if speed <= 0 {
		speed = 1.0
	}
	s.speed = speed
	s.correctionEnabled = correctionEnabled
	s.started = true
	s.finished = false

	start := rec.Events[firstIdx].Snapshot
	s.dispatcher.Teleport(start)

	// Инвариант t=0: сразу после телепорта живая позиция обязана совпасть
	// с ожидаемой в пределах допуска
	if dev := s.dispatcher.LivePosition().DistanceTo(start.Position); dev > startTolerance {
		logger.ForSubject(rec.SubjectID).WithField("deviation", dev).
			Warn("Playback start position deviates from first snapshot")
	}

	return nil
}

// Started возвращает true после успешного Start
func (s *Scheduler) Started() bool {
	return s.started
}

// Finished возвращает true, когда курсор дошел до конца ленты
func (s *Scheduler) Finished() bool {
	return s.finished
}

// Speed возвращает текущий множитель скорости
func (s *Scheduler) Speed() float64 {
	return s.speed
}

// SetSpeed меняет множитель для всех БУДУЩИХ тиков.
// Уже диспетчеризованные события не переигрываются.
func (s *Scheduler) SetSpeed(speed float64) {
	if speed > 0 {
		s.speed = speed
	}
}

// CorrectionEnabled возвращает флаг, заданный на старте
func (s *Scheduler) CorrectionEnabled() bool {
	return s.correctionEnabled
}

// Tick продвигает симулированное время и диспетчеризует все созревшие
// события. События с равными timestamp уходят в порядке ленты в ОДИН тик.
func (s *Scheduler) Tick(dtWall float64) {
	if !s.started || s.finished {
		return
	}

	s.cursor.SimElapsed += dtWall * s.speed

	for {
		ev := s.cursor.Peek()
		if ev == nil {
			s.finished = true
			return
		}
		if ev.Timestamp > s.cursor.SimElapsed {
			return
		}
		s.dispatcher.DispatchEvent(ev)
		s.cursor.Advance()
	}
}

// Restart сбрасывает курсор для следующей итерации цикла.
// Единственное легальное место отката курсора.
func (s *Scheduler) Restart() {
	s.cursor.Reset()
	s.finished = false
}

// Stop останавливает воспроизведение (отмена)
func (s *Scheduler) Stop() {
	s.started = false
	s.finished = true
}
