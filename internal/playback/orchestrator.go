package playback

import (
	"errors"
	"fmt"

	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/internal/infrastructure/storage"
	"github.com/asherp/go-for-launch/internal/recorder"
	"github.com/asherp/go-for-launch/internal/world"
	"github.com/asherp/go-for-launch/pkg/logger"
)

// SessionContext - явный контекст сессии, передаваемый Оркестратору
// при создании. Никакого чтения "кем спавниться" из глобального состояния.
type SessionContext struct {
	// PlayerSubject - субъект, которым управляет живой игрок.
	// Его запись не воспроизводится агентом: ее место занимает сам игрок,
	// а файл будет перезаписан новым каноническим захватом.
	PlayerSubject string

	// RecordingsDir - папка с записями (по одной на субъекта)
	RecordingsDir string

	// Speed - множитель скорости воспроизведения для всех агентов
	Speed float64

	// CorrectionEnabled - включена ли коррекция дрейфа
	CorrectionEnabled bool

	// Loop - перезапускать ли воспроизведение по кругу
	Loop bool
}

// Orchestrator находит записи, спавнит по агенту на запись
// и синхронизирует их старт. Все агенты обрабатываются последовательно
// внутри одного тика - движок однопоточный и кооперативный.
type Orchestrator struct {
	ctx   SessionContext
	cfg   Config
	store *storage.RecordingStore

	layers *world.Registry
	agents []*Agent
	byID   map[string]*Agent
	navs   []*world.LineNavigator

	notes *NotificationQueue
	tasks *TaskQueue

	tick    int
	elapsed float64

	startIssued bool // start() разослан всем агентам
	allStarted  bool // уведомление ALL_STARTED потреблено

	liveRecorder *recorder.Recorder

	// Финальные сводки точности по завершившимся агентам
	summaries map[string]Summary
}

func NewOrchestrator(ctx SessionContext, cfg Config) *Orchestrator {
	if ctx.Speed <= 0 {
		ctx.Speed = 1.0
	}
	return &Orchestrator{
		ctx:       ctx,
		cfg:       cfg,
		store:     storage.NewRecordingStore(ctx.RecordingsDir),
		layers:    world.NewRegistry(),
		byID:      make(map[string]*Agent),
		notes:     NewNotificationQueue(),
		tasks:     NewTaskQueue(),
		summaries: make(map[string]Summary),
	}
}

// Store возвращает хранилище записей (для живой стороны сессии)
func (o *Orchestrator) Store() *storage.RecordingStore {
	return o.store
}

// Layers возвращает реестр слоев
func (o *Orchestrator) Layers() *world.Registry {
	return o.layers
}

// Notes возвращает очередь уведомлений (производители кладут сюда)
func (o *Orchestrator) Notes() *NotificationQueue {
	return o.notes
}

// Agents возвращает агентов в порядке спавна (отсортированы по субъекту)
func (o *Orchestrator) Agents() []*Agent {
	return o.agents
}

// Agent возвращает агента по ID субъекта
func (o *Orchestrator) Agent(subjectID string) *Agent {
	return o.byID[subjectID]
}

// AllStarted возвращает true после синхронного старта всех агентов
func (o *Orchestrator) AllStarted() bool {
	return o.allStarted
}

// Summaries возвращает финальные сводки точности завершившихся агентов
func (o *Orchestrator) Summaries() map[string]Summary {
	return o.summaries
}

// Tasks возвращает очередь отложенных задач (для отладочных эндпоинтов)
func (o *Orchestrator) Tasks() *TaskQueue {
	return o.tasks
}

// TickCount возвращает номер текущего тика оркестрации
func (o *Orchestrator) TickCount() int {
	return o.tick
}

// AttachLiveRecorder подключает рекордер живого игрока.
// Захват начнется только после ALL_STARTED - сессия синхронизируется
// со стартом воспроизведения NPC.
func (o *Orchestrator) AttachLiveRecorder(r *recorder.Recorder) {
	o.liveRecorder = r
}

// ResolveTarget реализует TargetResolver: поиск живого агента для следования
func (o *Orchestrator) ResolveTarget(subjectID string) FollowTarget {
	a, ok := o.byID[subjectID]
	if !ok || !a.Alive() {
		return nil
	}
	return a
}

// DiscoverAndSpawn находит все записи и спавнит по агенту на каждую.
// Порядок - по идентичности субъекта (стабилен между сессиями).
// Возвращает количество заспавненных агентов.
//
// Сбой одной записи не трогает остальных: битый файл или запись без
// позиций пропускаются с предупреждением.
func (o *Orchestrator) DiscoverAndSpawn() (int, error) {
	subjects, err := o.store.ListSubjects()
	if err != nil {
		return 0, fmt.Errorf("recording discovery failed: %w", err)
	}

	for _, subject := range subjects {
		if subject == o.ctx.PlayerSubject {
			logger.ForSubject(subject).Info("Skipping live player's own recording")
			continue
		}

		rec, err := o.store.Load(subject)
		if err != nil {
			logger.ForSubject(subject).WithError(err).Warn("Recording unreadable, skipping")
			continue
		}

		if err := o.spawnAgent(rec); err != nil {
			if errors.Is(err, domain.ErrNoPositionData) {
				logger.ForSubject(subject).Warn("Recording has no position data, agent not created")
			} else {
				logger.ForSubject(subject).WithError(err).Warn("Agent spawn failed")
			}
			continue
		}
	}

	logger.Log.WithField("agents", len(o.agents)).Info("Recordings discovered")
	return len(o.agents), nil
}

// spawnAgent создает тело и агента в точке первого снапшота записи
func (o *Orchestrator) spawnAgent(rec *domain.Recording) error {
	idx := rec.FirstSnapshotIndex()
	if idx < 0 {
		return domain.ErrNoPositionData
	}
	snap := rec.Events[idx].Snapshot

	body := world.NewBody(rec.SubjectID, snap.Position, snap.Floor, o.cfg.MoverSpeed)
	body.SetZHeight(snap.ZHeight)
	o.layers.Place(rec.SubjectID, snap.Floor)

	nav := world.NewLineNavigator(body, o.cfg.NavigatorSpeed, o.cfg.ArriveEpsilon)

	agent, err := NewAgent(rec, body, nav, o.layers, o, o.notes, o.cfg)
	if err != nil {
		o.layers.Remove(rec.SubjectID)
		return err
	}

	o.agents = append(o.agents, agent)
	o.byID[rec.SubjectID] = agent
	o.navs = append(o.navs, nav)
	return nil
}

// Tick - один проход оркестрации:
//  1. выгрести очередь уведомлений (ровно один раз за тик);
//  2. выполнить созревшие отложенные задачи;
//  3. протикать агентов последовательно;
//  4. протикать навигацию (догоняющее движение идет в wall-времени);
//  5. разослать синхронный старт, когда все агенты прошли
//     тик инициализации;
//  6. протикать рекордер живого игрока (если захват открыт).
func (o *Orchestrator) Tick(dt float64) {
	o.tick++
	o.elapsed += dt

	for _, n := range o.notes.Drain() {
		o.handleNote(n)
	}

	o.tasks.RunDue(o.elapsed)

	for _, a := range o.agents {
		a.Tick(dt)
	}
	for _, nav := range o.navs {
		nav.Tick(dt)
	}

	o.maybeIssueStart()

	if o.liveRecorder != nil && o.liveRecorder.Capturing() {
		o.liveRecorder.Tick(dt)
	}
}

// maybeIssueStart рассылает start() всем агентам подряд В ОДНОМ проходе,
// как только каждый прошел свой тик инициализации
func (o *Orchestrator) maybeIssueStart() {
	if o.startIssued {
		return
	}
	for _, a := range o.agents {
		if a.Phase() != AgentLoaded {
			return
		}
	}

	for _, a := range o.agents {
		if err := a.StartPlayback(o.ctx.Speed, o.ctx.CorrectionEnabled); err != nil {
			logger.ForSubject(a.SubjectID()).WithError(err).Warn("Playback start failed")
			a.Cancel("playback start failed")
		}
	}
	o.startIssued = true
	o.notes.Push(Notification{Kind: NoteAllStarted})
}

// handleNote обрабатывает одно уведомление из очереди
func (o *Orchestrator) handleNote(n Notification) {
	switch n.Kind {
	case NoteAllStarted:
		o.allStarted = true
		logger.Log.Info("All agents started, session synchronized")
		// Ворота захвата: живой игрок начинает записываться только теперь
		if o.liveRecorder != nil && !o.liveRecorder.Capturing() {
			o.liveRecorder.StartCapture(false)
		}

	case NotePlaybackFinished:
		o.summaries[n.SubjectID] = n.Accuracy
		if o.ctx.Loop {
			// Рестарт цикла - одна из двух легальных приостановок:
			// явная ограниченная задержка через очередь задач
			subject := n.SubjectID
			o.tasks.Schedule(o.elapsed+o.cfg.LoopRestartDelay, func() {
				if a := o.byID[subject]; a != nil {
					if err := a.Restart(); err != nil {
						logger.ForSubject(subject).WithError(err).Warn("Loop restart failed")
					}
				}
			})
		}

	case NoteDriftDetected:
		logger.ForSubject(n.SubjectID).WithField("deviation", n.Deviation).
			Debug("Drift above threshold")

	case NoteAgentCancelled:
		// Отмена одного агента никогда не трогает соседей и Оркестратор
		logger.ForSubject(n.SubjectID).WithField("reason", n.Reason).
			Info("Agent reached terminal state")

	case NoteCaptureStopped:
		logger.ForSubject(n.SubjectID).Info("Capture sealed")
	}
}

// DestroyAll снимает всех агентов (демонтаж сцены)
func (o *Orchestrator) DestroyAll() {
	for _, a := range o.agents {
		a.Destroy()
		o.layers.Remove(a.SubjectID())
	}
}
