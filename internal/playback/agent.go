package playback

import (
	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/pkg/geom"
	"github.com/asherp/go-for-launch/pkg/logger"
)

// AgentPhase - фаза жизненного цикла агента.
// Вместо размазанных по корутинам приостановок - явная машина состояний,
// продвигаемая ровно один раз за тик.
type AgentPhase uint8

const (
	AgentSpawned AgentPhase = iota
	AgentInitialized
	AgentLoaded
	AgentPlaying
	AgentCancelled
)

var agentPhaseNames = map[AgentPhase]string{
	AgentSpawned:     "SPAWNED",
	AgentInitialized: "INITIALIZED",
	AgentLoaded:      "LOADED",
	AgentPlaying:     "PLAYING",
	AgentCancelled:   "CANCELLED",
}

func (p AgentPhase) String() string {
	if s, ok := agentPhaseNames[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// Mover - тело агента у внешнего движка. Минимальный контракт.
type Mover interface {
	Position() geom.Vec
	SetPosition(geom.Vec)
	Floor() string
	SetFloor(string)
	// ApplyInput интегрирует текущий направленный ввод за кадр
	ApplyInput(dx, dy float64, dt float64)
}

// HeightSetter - опциональная способность тела принимать z-высоту
type HeightSetter interface {
	SetZHeight(float64)
}

// LayerMover переносит агента между слоями одним неделимым шагом
type LayerMover interface {
	Move(agentID, to string) error
}

// TargetResolver находит живого агента по ID субъекта (для следования)
type TargetResolver interface {
	ResolveTarget(subjectID string) FollowTarget
}

// Agent - один воспроизводящий агент: ровно один курсор, одно состояние
// коррекции и опциональная связь следования. Агенты независимы; чужое
// состояние доступно только на чтение через FollowTarget.
type Agent struct {
	id  string
	rec *domain.Recording
	cfg Config

	mover    Mover
	zset     HeightSetter // nil, если тело не умеет высоту
	layers   LayerMover
	nav      Navigator
	resolver TargetResolver
	notify   *NotificationQueue

	cursor *Cursor
	sched  *Scheduler
	oracle *Oracle
	drift  *DriftDetector
	corr   *CorrectionController
	follow *FollowController

	// Флаги симулированного ввода, которые дергает планировщик
	inputs map[domain.ActionType]bool

	// Живой игрок перехватил управление посреди воспроизведения
	manualOverride bool

	phase            AgentPhase
	destroyed        bool
	finishedReported bool
	cancelReason     string
}

// NewAgent создает агента для записи. Запись без единой опорной позиции
// не дает агента вовсе: спавн неразрешим.
func NewAgent(rec *domain.Recording, mover Mover, nav Navigator, layers LayerMover,
	resolver TargetResolver, notify *NotificationQueue, cfg Config) (*Agent, error) {

	if rec.FirstSnapshotIndex() < 0 {
		return nil, domain.ErrNoPositionData
	}

	a := &Agent{
		id:       rec.SubjectID,
		rec:      rec,
		cfg:      cfg,
		mover:    mover,
		layers:   layers,
		nav:      nav,
		resolver: resolver,
		notify:   notify,
		cursor:   NewCursor(rec),
		oracle:   NewOracle(rec),
		drift:    NewDriftDetector(),
		inputs:   make(map[domain.ActionType]bool),
		phase:    AgentSpawned,
	}
	a.sched = NewScheduler(a.cursor, a)
	a.corr = NewCorrectionController(rec, nav, cfg)
	a.follow = NewFollowController(nav, cfg)

	if z, ok := mover.(HeightSetter); ok {
		a.zset = z
	}
	return a, nil
}

// --- FollowTarget (доступ на чтение для чужих агентов) ---

func (a *Agent) SubjectID() string {
	return a.id
}

func (a *Agent) LivePosition() geom.Vec {
	return a.mover.Position()
}

// Alive возвращает false для уничтоженных и отмененных агентов.
// Следующий тик следящего за таким агентом разорвет связь.
func (a *Agent) Alive() bool {
	return !a.destroyed && a.phase != AgentCancelled
}

// --- Доступ к состоянию ---

func (a *Agent) Phase() AgentPhase { return a.phase }

func (a *Agent) CorrectionState() domain.CorrectionState { return a.corr.State() }

func (a *Agent) Cursor() *Cursor { return a.cursor }

func (a *Agent) Recording() *domain.Recording { return a.rec }

func (a *Agent) Finished() bool { return a.sched.Finished() }

func (a *Agent) AccuracySummary() Summary { return a.drift.Summary() }

// InputPressed возвращает состояние флага симулированного ввода
func (a *Agent) InputPressed(action domain.ActionType) bool {
	return a.inputs[action]
}

// FollowingTarget возвращает ID цели следования ("" если нет)
func (a *Agent) FollowingTarget() string {
	if t := a.follow.Target(); t != nil {
		return t.SubjectID()
	}
	return ""
}

// SetManualOverride помечает, что живой игрок перехватил ввод
func (a *Agent) SetManualOverride(on bool) {
	a.manualOverride = on
}

// --- Жизненный цикл ---

// StartPlayback запускает планировщик. Вызывается Оркестратором,
// когда ВСЕ агенты готовы (синхронный старт).
func (a *Agent) StartPlayback(speed float64, correctionEnabled bool) error {
	if a.phase != AgentLoaded {
		return domain.ErrEmptyRecording
	}
	if err := a.sched.Start(speed, correctionEnabled, a.cfg.StartTolerance); err != nil {
		return err
	}
	a.phase = AgentPlaying
	return nil
}

// Tick продвигает агента на один шаг симуляции
func (a *Agent) Tick(dt float64) {
	switch a.phase {
	case AgentSpawned:
		// Один тик инициализации: тело уже размещено, даем внешнему
		// движку кадр на регистрацию
		a.phase = AgentInitialized
	case AgentInitialized:
		// Запись была загружена до спавна - фиксируем готовность
		a.phase = AgentLoaded
	case AgentPlaying:
		a.play(dt)
	}
}

// play - один тик воспроизведения
func (a *Agent) play(dt float64) {
	// 1. Диспетчеризация созревших событий
	a.sched.Tick(dt)

	// 2. Контроллер коррекции мог дойти до терминального отказа
	if a.corr.Cancelled() {
		a.Cancel("navigation target unreachable")
		return
	}

	now := a.cursor.SimElapsed
	live := a.mover.Position()

	// 3. Обычное движение от флагов ввода - только в покое.
	// Пока рулит навигатор (коррекция или следование), флаги не применяются.
	if a.corr.Phase() == domain.PhaseFollowing && !a.follow.Active() {
		dx, dy := a.inputAxis()
		if dx != 0 || dy != 0 {
			a.mover.ApplyInput(dx, dy, dt*a.sched.Speed())
		}
	}

	// 4. Замер дрейфа
	expected, _, _ := a.oracle.ExpectedAt(now)
	deviation := live.DistanceTo(expected)
	a.drift.Sample(deviation)

	if deviation > a.cfg.CorrectionThreshold &&
		a.sched.CorrectionEnabled() &&
		a.corr.Phase() == domain.PhaseFollowing &&
		!a.follow.Active() {

		a.notify.Push(Notification{
			Kind:      NoteDriftDetected,
			SubjectID: a.id,
			Deviation: deviation,
		})
		a.corr.OnDrift(now, a.follow.Active())
	}

	// 5. Переоценка догона и ведение за целью
	a.corr.Tick(now, live, a.follow.Active())
	a.follow.Tick(now, live, a.manualOverride)

	// 6. Завершение: курсор дошел до конца ленты
	if a.sched.Finished() && !a.finishedReported {
		a.finishedReported = true
		summary := a.drift.Finalize()
		logger.ForSubject(a.id).WithFields(map[string]interface{}{
			"avg_drift": summary.Average,
			"max_drift": summary.Max,
			"samples":   summary.Samples,
		}).Info("Playback finished")
		a.notify.Push(Notification{
			Kind:      NotePlaybackFinished,
			SubjectID: a.id,
			Accuracy:  summary,
		})
	}
}

// inputAxis сводит флаги направленного ввода в ось (-1..1, -1..1)
func (a *Agent) inputAxis() (dx, dy float64) {
	for action, pressed := range a.inputs {
		if !pressed {
			continue
		}
		ax, ay := action.Axis()
		dx += float64(ax)
		dy += float64(ay)
	}
	return dx, dy
}

// --- Dispatcher (принимающая сторона планировщика) ---

// Teleport жестко ставит агента в снапшот (старт воспроизведения)
func (a *Agent) Teleport(snap *domain.Snapshot) {
	a.mover.SetPosition(snap.Position)
	if snap.Floor != "" && snap.Floor != a.mover.Floor() {
		a.moveFloor(snap.Floor)
	}
	if a.zset != nil {
		a.zset.SetZHeight(snap.ZHeight)
	}
}

// DispatchEvent применяет одно созревшее событие
func (a *Agent) DispatchEvent(ev *domain.RecordedEvent) {
	switch {
	case ev.Action.IsDirectional():
		a.inputs[ev.Action] = ev.Pressed

	case ev.Action == domain.ActionJump:
		// Мгновенное действие: физику прыжка делает внешний движок,
		// мы только отдаем фронт
		logger.ForSubject(a.id).Debug("Replayed jump")

	case ev.Action == domain.ActionMouseClick:
		// Информационное событие; позиция клика нужна только визуализации

	case ev.Action == domain.ActionCheckpoint:
		a.applyCheckpoint(ev)

	case ev.Action == domain.ActionFloorChange:
		a.moveFloor(ev.ToFloor)

	case ev.Action == domain.ActionFollowStart:
		a.dispatchFollowStart(ev)

	case ev.Action == domain.ActionFollowStop:
		a.follow.StopFollowing()

	case ev.Action == domain.ActionObjectInteraction:
		logger.ForSubject(a.id).WithField("object_id", ev.ObjectID).Debug("Replayed interaction")
	}
}

// applyCheckpoint - чекпоинтам верим всегда: заметное отклонение
// гасится жестким притягиванием, минуя контроллер коррекции
func (a *Agent) applyCheckpoint(ev *domain.RecordedEvent) {
	snap := ev.Snapshot
	if snap == nil {
		return
	}
	if a.mover.Position().DistanceTo(snap.Position) <= a.cfg.CheckpointSnapEpsilon {
		return
	}
	a.mover.SetPosition(snap.Position)
	if snap.Floor != "" && snap.Floor != a.mover.Floor() {
		a.moveFloor(snap.Floor)
	}
	if a.zset != nil {
		a.zset.SetZHeight(snap.ZHeight)
	}
}

func (a *Agent) dispatchFollowStart(ev *domain.RecordedEvent) {
	if a.resolver == nil {
		return
	}
	target := a.resolver.ResolveTarget(ev.NpcID)
	if target == nil {
		// Цель могла не заспавниться в этой сессии - мир изменился,
		// продолжаем воспроизведение без связи
		logger.ForSubject(a.id).WithField("target_id", ev.NpcID).
			Warn("Follow target not found, skipping")
		return
	}
	a.follow.Follow(target, ev.FollowDistance, a.cursor.SimElapsed, a.mover.Position())
}

// moveFloor переводит агента на другой этаж: реестр слоев (неделимый
// перенос) плюс поле текущего этажа у тела
func (a *Agent) moveFloor(to string) {
	if a.layers != nil {
		if err := a.layers.Move(a.id, to); err != nil {
			logger.ForSubject(a.id).WithError(err).Warn("Layer move failed")
		}
	}
	a.mover.SetFloor(to)
}

// --- Отмена и рестарт ---

// Cancel - синхронная терминальная отмена: в ЭТОМ же тике гаснут
// симулированный ввод, коррекция, следование и индикаторы. Никакая
// отложенная работа отмену не переживает. Соседних агентов не трогаем.
func (a *Agent) Cancel(reason string) {
	if a.phase == AgentCancelled {
		return
	}
	a.phase = AgentCancelled
	a.cancelReason = reason

	a.sched.Stop()
	a.inputs = make(map[domain.ActionType]bool)
	a.follow.StopFollowing()
	a.nav.Stop()

	logger.ForSubject(a.id).WithField("reason", reason).Warn("Agent cancelled")
	a.notify.Push(Notification{
		Kind:      NoteAgentCancelled,
		SubjectID: a.id,
		Reason:    reason,
	})
}

// Restart начинает следующую итерацию цикла: единственный легальный
// сброс курсора. Статистика и коррекция начинаются заново.
func (a *Agent) Restart() error {
	if a.phase == AgentCancelled {
		return domain.ErrEmptyRecording
	}
	speed := a.sched.Speed()
	correction := a.sched.CorrectionEnabled()

	a.sched.Restart()
	a.drift.Reset()
	a.corr.Reset()
	a.inputs = make(map[domain.ActionType]bool)
	a.finishedReported = false

	a.phase = AgentLoaded
	return a.StartPlayback(speed, correction)
}

// Destroy снимает агента при демонтаже сцены
func (a *Agent) Destroy() {
	a.destroyed = true
	a.nav.Stop()
}
