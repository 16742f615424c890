package engine

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/internal/network"
	"github.com/asherp/go-for-launch/internal/playback"
	"github.com/asherp/go-for-launch/internal/recorder"
	"github.com/asherp/go-for-launch/internal/world"
	"github.com/asherp/go-for-launch/pkg/api"
	"github.com/asherp/go-for-launch/pkg/geom"
	"github.com/asherp/go-for-launch/pkg/logger"
)

// DefaultFloor - этаж, на котором появляется игрок без прежней записи
const DefaultFloor = "GroundFloor"

// Service - живая сессия: оркестрация призраков + захват живого игрока.
// Вся симуляция крутится в одной горутине runLoop; команды извне
// попадают внутрь только через CommandChan и применяются в начале тика.
type Service struct {
	Ctx playback.SessionContext
	Cfg playback.Config

	Orch *playback.Orchestrator
	Hub  *network.Broadcaster

	// Живой игрок
	PlayerBody *world.Body
	Recorder   *recorder.Recorder

	CommandChan chan api.ClientCommand

	// Флаги живого ввода (применяются к телу каждый тик)
	liveInputs map[domain.ActionType]bool

	paused bool
	stop   chan struct{}
}

func NewService(ctx playback.SessionContext, cfg playback.Config) *Service {
	orch := playback.NewOrchestrator(ctx, cfg)

	// Спавн живого игрока: из первого снапшота его прежней записи,
	// если она есть, иначе дефолтная точка
	pos := geom.Vec{X: 0, Y: 0}
	floor := DefaultFloor
	if prev, err := orch.Store().Load(ctx.PlayerSubject); err == nil {
		if idx := prev.FirstSnapshotIndex(); idx >= 0 {
			pos = prev.Events[idx].Snapshot.Position
			floor = prev.Events[idx].Snapshot.Floor
		}
	}

	body := world.NewBody(ctx.PlayerSubject, pos, floor, cfg.MoverSpeed)
	orch.Layers().Place(ctx.PlayerSubject, floor)

	rec := recorder.NewRecorder(ctx.PlayerSubject, body, recorder.NewConfig())
	orch.AttachLiveRecorder(rec)

	return &Service{
		Ctx:         ctx,
		Cfg:         cfg,
		Orch:        orch,
		Hub:         network.NewBroadcaster(),
		PlayerBody:  body,
		Recorder:    rec,
		CommandChan: make(chan api.ClientCommand, 100),
		liveInputs:  make(map[domain.ActionType]bool),
		stop:        make(chan struct{}),
	}
}

// Start находит записи, спавнит агентов и запускает цикл симуляции
func (s *Service) Start() error {
	if _, err := s.Orch.DiscoverAndSpawn(); err != nil {
		return err
	}
	go s.runLoop()
	return nil
}

// Stop синхронно гасит цикл
func (s *Service) Stop() {
	close(s.stop)
}

// ProcessCommand принимает команду от внешнего мира (WebSocket).
// Команда будет применена в начале ближайшего тика.
func (s *Service) ProcessCommand(cmd api.ClientCommand) {
	select {
	case s.CommandChan <- cmd:
	default:
		logger.Log.Warn("Command channel full, dropping command")
	}
}

// --- SIMULATION LOOP ---

const tickInterval = 50 * time.Millisecond

func (s *Service) runLoop() {
	logger.Log.Info("[LOOP] Simulation loop started")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-s.stop:
			logger.Log.Info("[LOOP] Simulation loop stopped")
			return

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			// 1. Применяем накопившиеся команды (неблокирующе)
			s.drainCommands()

			// 2. Один проход симуляции
			if !s.paused {
				s.Orch.Tick(dt)
				s.tickPlayer(dt)
			}

			// 3. Рассылка статуса наблюдателям
			s.Hub.Broadcast(s.BuildStatus())
		}
	}
}

func (s *Service) drainCommands() {
	for {
		select {
		case cmd := <-s.CommandChan:
			s.handleCommand(cmd)
		default:
			return
		}
	}
}

// tickPlayer интегрирует живой ввод игрока
func (s *Service) tickPlayer(dt float64) {
	var dx, dy float64
	for action, pressed := range s.liveInputs {
		if !pressed {
			continue
		}
		ax, ay := action.Axis()
		dx += float64(ax)
		dy += float64(ay)
	}
	if dx != 0 || dy != 0 {
		s.PlayerBody.ApplyInput(dx, dy, dt)
	}
}

// handleCommand выполняет одну команду управления внутри тика
func (s *Service) handleCommand(cmd api.ClientCommand) {
	switch cmd.Action {
	case api.CmdRecordStart:
		if s.Recorder.Capturing() {
			logger.ForSubject(s.Ctx.PlayerSubject).WithError(domain.ErrCaptureActive).
				Warn("Record start rejected")
			return
		}
		var p api.RecordStartPayload
		_ = json.Unmarshal(cmd.Payload, &p)
		s.Recorder.StartCapture(p.ContinueExisting)

	case api.CmdRecordStop:
		count := s.Recorder.StopCapture()
		s.Orch.Notes().Push(playback.Notification{
			Kind:      playback.NoteCaptureStopped,
			SubjectID: s.Ctx.PlayerSubject,
		})
		logger.ForSubject(s.Ctx.PlayerSubject).WithField("events", count).Info("Recording sealed")

	case api.CmdSave:
		// Ошибка сохранения не трогает ленту в памяти - повтор возможен
		if err := s.Orch.Store().Save(s.Recorder.Recording()); err != nil {
			logger.ForSubject(s.Ctx.PlayerSubject).WithError(err).Error("Save failed")
		}

	case api.CmdLoad:
		// Сбой загрузки не трогает ленту в памяти
		loaded, err := s.Orch.Store().Load(s.Ctx.PlayerSubject)
		if err != nil {
			logger.ForSubject(s.Ctx.PlayerSubject).WithError(err).Error("Load failed")
			return
		}
		if err := s.Recorder.Replace(loaded); err != nil {
			logger.ForSubject(s.Ctx.PlayerSubject).WithError(err).Warn("Load rejected")
		}

	case api.CmdStats:
		s.logStats()

	case api.CmdPlaybackToggle:
		s.paused = !s.paused
		logger.Log.WithField("paused", s.paused).Info("Playback toggled")

	case api.CmdInput:
		s.handleInput(cmd.Payload)

	default:
		logger.Log.WithField("action", cmd.Action).Warn("Unknown command")
	}
}

// handleInput применяет живой ввод: тело двигается, рекордер пишет фронты
func (s *Service) handleInput(payload json.RawMessage) {
	var p api.InputPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Log.WithError(err).Warn("Bad input payload")
		return
	}

	action := domain.ParseAction(p.Action)
	switch {
	case action.IsDirectional():
		s.liveInputs[action] = p.Pressed
		s.Recorder.SetDirectional(action, p.Pressed)
	case action == domain.ActionJump && p.Pressed:
		s.Recorder.Jump()
	default:
		logger.Log.WithField("action", p.Action).Debug("Ignoring non-input action")
	}
}

func (s *Service) logStats() {
	for subject, sum := range s.Orch.Summaries() {
		logger.ForSubject(subject).WithFields(map[string]interface{}{
			"avg_drift": sum.Average,
			"max_drift": sum.Max,
			"samples":   sum.Samples,
		}).Info("Playback accuracy")
	}
	logger.ForSubject(s.Ctx.PlayerSubject).
		WithField("events", s.Recorder.Recording().Len()).Info("Capture length")
}

// SaveCapture запечатывает и сохраняет текущий захват (graceful shutdown)
func (s *Service) SaveCapture() error {
	if s.Recorder.Capturing() {
		s.Recorder.StopCapture()
	}
	if s.Recorder.Recording().Len() == 0 {
		return domain.ErrEmptyRecording
	}
	return s.Orch.Store().Save(s.Recorder.Recording())
}

// BuildStatus создает слепок состояния сессии для наблюдателей
func (s *Service) BuildStatus() api.StatusUpdate {
	status := api.StatusUpdate{
		Type:       "STATUS",
		Tick:       s.Orch.TickCount(),
		AllStarted: s.Orch.AllStarted(),
		Capturing:  s.Recorder.Capturing(),
	}

	for _, a := range s.Orch.Agents() {
		view := api.AgentView{
			SubjectID:       a.SubjectID(),
			Phase:           a.Phase().String(),
			CorrectionPhase: a.CorrectionState().Phase.String(),
			Floor:           s.Orch.Layers().LayerOf(a.SubjectID()),
			SimElapsed:      a.Cursor().SimElapsed,
			CursorIndex:     a.Cursor().Index,
			EventCount:      a.Recording().Len(),
			FollowTarget:    a.FollowingTarget(),
		}
		pos := a.LivePosition()
		view.Pos.X = pos.X
		view.Pos.Y = pos.Y

		sum := a.AccuracySummary()
		if sum.Samples > 0 {
			view.Accuracy = &api.AccuracyView{
				Average:     sum.Average,
				Max:         sum.Max,
				SampleCount: sum.Samples,
			}
		}
		status.Agents = append(status.Agents, view)
	}
	return status
}

// IsPaused возвращает true, пока симуляция на паузе
func (s *Service) IsPaused() bool {
	return s.paused
}

// RunHeadless крутит симуляцию без горутины и сети заданное число тиков.
// Используется режимом реплея из main и интеграционными тестами.
func (s *Service) RunHeadless(ticks int, dt float64) {
	for i := 0; i < ticks; i++ {
		s.drainCommands()
		s.Orch.Tick(dt)
		s.tickPlayer(dt)
	}
}

// ErrIsEmptyCapture проверяет "нечего сохранять" при выключении
func ErrIsEmptyCapture(err error) bool {
	return errors.Is(err, domain.ErrEmptyRecording)
}
