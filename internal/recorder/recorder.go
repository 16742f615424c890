package recorder

import (
	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/pkg/geom"
	"github.com/asherp/go-for-launch/pkg/logger"
)

// SubjectState - минимум, который записывающая сторона должна уметь
// прочитать у субъекта (игрока или NPC).
type SubjectState interface {
	Position() geom.Vec
	Floor() string
}

// --- Опциональные способности субъекта ---
// Вместо проверки "а есть ли у объекта такое поле" в рантайме,
// каждая способность - явный интерфейс. Проверяется один раз, в NewRecorder.

// HeightReporter сообщает z-высоту (прыжки, лестницы)
type HeightReporter interface {
	ZHeight() float64
}

// TileReporter сообщает позицию в тайлах навигационной сетки
type TileReporter interface {
	TilePosition() geom.Vec
}

// TransitReporter сообщает, что субъект сейчас едет по автономному маршруту.
// Во время такого транзита периодические чекпоинты пропускаются:
// промежуточные точки маршрута - это шум, а не "наземная правда",
// и они портят интерполяцию Оракула.
type TransitReporter interface {
	InAutoTransit() bool
	Speed() float64
}

// Config - параметры записи
type Config struct {
	// CheckpointInterval - период безусловных чекпоинтов позиции, сек
	CheckpointInterval float64
	// MinTransitSpeed - скорость (px/s), выше которой транзит считается
	// "нетривиальным" и чекпоинты пропускаются
	MinTransitSpeed float64
}

// NewConfig создает конфиг записи по умолчанию
func NewConfig() Config {
	return Config{
		CheckpointInterval: 1.0,
		MinTransitSpeed:    5.0,
	}
}

// Recorder - записывающая сторона Event Store.
// Владеет текущим Recording, ведет часы захвата и следит за фронтами ввода.
type Recorder struct {
	cfg     Config
	subject SubjectState

	// Опциональные способности (nil, если субъект их не реализует)
	height  HeightReporter
	tile    TileReporter
	transit TransitReporter

	rec            *domain.Recording
	capturing      bool
	elapsed        float64 // Часы захвата, сек от startCapture
	lastCheckpoint float64

	// Текущее состояние направленных клавиш для edge-triggered записи
	pressed map[domain.ActionType]bool
}

// NewRecorder создает рекордер для субъекта.
// Способности (высота, тайлы, транзит) определяются здесь один раз.
func NewRecorder(subjectID string, subject SubjectState, cfg Config) *Recorder {
	r := &Recorder{
		cfg:     cfg,
		subject: subject,
		rec:     domain.NewRecording(subjectID),
		pressed: make(map[domain.ActionType]bool),
	}
	if h, ok := subject.(HeightReporter); ok {
		r.height = h
	}
	if t, ok := subject.(TileReporter); ok {
		r.tile = t
	}
	if tr, ok := subject.(TransitReporter); ok {
		r.transit = tr
	}
	return r
}

// StartCapture начинает захват.
// При continueExisting=false прежние события стираются и отсчет времени
// начинается с нуля; при true дозапись продолжает часы с хвоста ленты
// (инвариант неубывающих timestamps). Запечатанная лента не дописывается -
// захват в этом случае всегда начинается заново.
// Первым событием всегда идет чекпоинт - точка старта воспроизведения.
func (r *Recorder) StartCapture(continueExisting bool) {
	if !continueExisting || r.rec.Sealed() {
		r.rec = domain.NewRecording(r.rec.SubjectID)
	}
	r.capturing = true
	r.elapsed = r.rec.Duration()
	r.lastCheckpoint = r.elapsed
	r.pressed = make(map[domain.ActionType]bool)

	r.append(domain.RecordedEvent{
		Timestamp: r.elapsed,
		Action:    domain.ActionCheckpoint,
		Snapshot:  r.snapshotNow(),
	})

	logger.ForSubject(r.rec.SubjectID).Info("Capture started")
}

// StopCapture запечатывает ленту и возвращает количество событий.
// Дальнейшие попытки записи отклоняются до нового StartCapture.
func (r *Recorder) StopCapture() int {
	if !r.capturing {
		return r.rec.Len()
	}
	r.capturing = false
	r.rec.Seal()
	logger.ForSubject(r.rec.SubjectID).WithField("events", r.rec.Len()).Info("Capture stopped")
	return r.rec.Len()
}

// Capturing возвращает true, пока идет захват
func (r *Recorder) Capturing() bool {
	return r.capturing
}

// Replace заменяет ленту в памяти загруженной записью (операция "load").
// Во время захвата отклоняется; при отказе прежняя лента остается как была.
func (r *Recorder) Replace(rec *domain.Recording) error {
	if r.capturing {
		return domain.ErrCaptureActive
	}
	r.rec = rec
	return nil
}

// Recording возвращает текущую ленту (для сохранения и статистики)
func (r *Recorder) Recording() *domain.Recording {
	return r.rec
}

// Tick продвигает часы захвата и пишет периодические чекпоинты.
// Вызывается раз в кадр симуляции.
func (r *Recorder) Tick(dt float64) {
	if !r.capturing {
		return
	}
	r.elapsed += dt

	if r.elapsed-r.lastCheckpoint < r.cfg.CheckpointInterval {
		return
	}

	// Пропуск чекпоинта посреди автономного транзита:
	// транзитные точки маршрута не должны попадать в интерполяцию.
	if r.transit != nil && r.transit.InAutoTransit() && r.transit.Speed() > r.cfg.MinTransitSpeed {
		r.lastCheckpoint = r.elapsed
		return
	}

	r.lastCheckpoint = r.elapsed
	r.append(domain.RecordedEvent{
		Timestamp: r.elapsed,
		Action:    domain.ActionCheckpoint,
		Snapshot:  r.snapshotNow(),
	})
}

// SetDirectional фиксирует состояние направленной клавиши.
// Событие пишется ТОЛЬКО при смене состояния нажато/отпущено (edge-triggered).
func (r *Recorder) SetDirectional(action domain.ActionType, pressedNow bool) {
	if !r.capturing || !action.IsDirectional() {
		return
	}
	if r.pressed[action] == pressedNow {
		return // Фронта нет - писать нечего
	}
	r.pressed[action] = pressedNow
	r.append(domain.RecordedEvent{
		Timestamp: r.elapsed,
		Action:    action,
		Pressed:   pressedNow,
		Snapshot:  r.snapshotNow(),
	})
}

// Jump пишет мгновенное действие прыжка (по одному событию на каждый фронт нажатия)
func (r *Recorder) Jump() {
	if !r.capturing {
		return
	}
	r.append(domain.RecordedEvent{
		Timestamp: r.elapsed,
		Action:    domain.ActionJump,
		Pressed:   true,
		Snapshot:  r.snapshotNow(),
	})
}

// Click пишет нажатие/отпускание мыши.
// Позиция клика сохраняется только на нажатии.
func (r *Recorder) Click(pos geom.Vec, pressedNow bool) {
	if !r.capturing {
		return
	}
	ev := domain.RecordedEvent{
		Timestamp: r.elapsed,
		Action:    domain.ActionMouseClick,
		Pressed:   pressedNow,
		Snapshot:  r.snapshotNow(),
	}
	if pressedNow {
		p := pos
		ev.ClickPos = &p
	}
	r.append(ev)
}

// FloorChange пишет переход субъекта между этажами
func (r *Recorder) FloorChange(from, to string) {
	if !r.capturing {
		return
	}
	r.append(domain.RecordedEvent{
		Timestamp: r.elapsed,
		Action:    domain.ActionFloorChange,
		Pressed:   true,
		Snapshot:  r.snapshotNow(),
		FromFloor: from,
		ToFloor:   to,
	})
}

// FollowStarted пишет начало следования за другим агентом
func (r *Recorder) FollowStarted(targetID string, targetPos geom.Vec, followDistance float64) {
	if !r.capturing {
		return
	}
	tp := targetPos
	r.append(domain.RecordedEvent{
		Timestamp:      r.elapsed,
		Action:         domain.ActionFollowStart,
		Pressed:        true,
		Snapshot:       r.snapshotNow(),
		NpcID:          targetID,
		NpcPos:         &tp,
		FollowDistance: followDistance,
	})
}

// FollowStopped пишет конец следования.
// Снапшота нет: позиция в момент отцепления не является опорной точкой маршрута.
func (r *Recorder) FollowStopped() {
	if !r.capturing {
		return
	}
	r.append(domain.RecordedEvent{
		Timestamp: r.elapsed,
		Action:    domain.ActionFollowStop,
		Pressed:   true,
	})
}

// ObjectInteraction пишет клик по интерактивному объекту
func (r *Recorder) ObjectInteraction(objectID string, wasAttached bool) {
	if !r.capturing {
		return
	}
	r.append(domain.RecordedEvent{
		Timestamp:   r.elapsed,
		Action:      domain.ActionObjectInteraction,
		Pressed:     true,
		Snapshot:    r.snapshotNow(),
		ObjectID:    objectID,
		WasAttached: wasAttached,
	})
}

// snapshotNow собирает снимок текущего состояния субъекта
func (r *Recorder) snapshotNow() *domain.Snapshot {
	snap := &domain.Snapshot{
		Position: r.subject.Position(),
		Floor:    r.subject.Floor(),
	}
	if r.height != nil {
		snap.ZHeight = r.height.ZHeight()
	}
	if r.tile != nil {
		t := r.tile.TilePosition()
		snap.Tile = &t
	}
	return snap
}

func (r *Recorder) append(e domain.RecordedEvent) {
	if err := r.rec.Append(e); err != nil {
		// Часы захвата монотонны, так что сюда попадаем только при гонке
		// запечатывания. Запись теряется осознанно.
		logger.ForSubject(r.rec.SubjectID).WithError(err).Warn("Event dropped")
	}
}
