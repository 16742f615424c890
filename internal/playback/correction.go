package playback

import (
	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/pkg/geom"
	"github.com/asherp/go-for-launch/pkg/logger"
)

// CorrectionController - машина состояний "минимальной запазданности".
// Вместо телепорта отстающий агент целится во все более дальние будущие
// точки маршрута, удваивая окно ожидания, пока не догонит запись
// физически правдоподобным движением.
//
// Following -> Correcting -> (LastWaypoint) -> Cancelled
type CorrectionController struct {
	cfg Config
	rec *domain.Recording
	nav Navigator

	state domain.CorrectionState
}

func NewCorrectionController(rec *domain.Recording, nav Navigator, cfg Config) *CorrectionController {
	return &CorrectionController{
		cfg: cfg,
		rec: rec,
		nav: nav,
		state: domain.CorrectionState{
			Phase: domain.PhaseFollowing,
		},
	}
}

// Phase возвращает текущую фазу
func (c *CorrectionController) Phase() domain.CorrectionPhase {
	return c.state.Phase
}

// State возвращает копию состояния (для статуса/отладки)
func (c *CorrectionController) State() domain.CorrectionState {
	return c.state
}

// OnDrift вызывается детектором, когда отклонение превысило порог.
// Во время активного следования за живым агентом коррекция подавляется
// полностью: следование главнее.
func (c *CorrectionController) OnDrift(now float64, following bool) {
	if following {
		return
	}
	if c.state.Phase != domain.PhaseFollowing {
		return // Уже догоняем
	}
	c.enterCorrecting(now)
}

// enterCorrecting выбирает точку рандеву и границу окна.
//
// Кандидат рандеву - самое раннее БУДУЩЕЕ событие со снапшотом.
// Граница окна - самое раннее будущее событие, которое НЕ является
// чекпоинтом ("следующее осмысленное действие"): оно авторитетно, когда
// существует; собственный timestamp кандидата - чистый fallback.
func (c *CorrectionController) enterCorrecting(now float64) {
	rendezvous := c.earliestFutureSnapshot(now)
	if rendezvous < 0 {
		// Впереди нет ни одной опорной точки - сразу последний шанс
		c.enterLastWaypoint(now)
		return
	}

	bound := c.earliestFutureMeaningful(now)

	var window float64
	if bound >= 0 {
		window = c.rec.Events[bound].Timestamp - now
	} else {
		window = c.rec.Events[rendezvous].Timestamp - now
	}
	if window <= 0 {
		window = c.cfg.FollowUpdateInterval // Вырожденное окно, даем хоть один интервал
	}

	target := c.rec.Events[rendezvous].Snapshot.Position
	c.state = domain.CorrectionState{
		Phase:          domain.PhaseCorrecting,
		WindowStart:    now,
		WindowDuration: window,
		TargetPosition: target,
		TargetIndex:    rendezvous,
	}
	c.nav.NavigateTo(target)

	logger.ForSubject(c.rec.SubjectID).WithField("window", window).
		Debug("Drift correction engaged")
}

// Tick переоценивает догон. Вызывается раз в тик во время воспроизведения.
//
// Пока окно не истекло, цель НЕ перевыдается: навигатор уже ведет.
// При активном следовании переоценка откладывается, но таймер окна
// продолжает идти (windowStart не трогаем).
func (c *CorrectionController) Tick(now float64, live geom.Vec, following bool) {
	switch c.state.Phase {
	case domain.PhaseCorrecting:
		if following {
			return
		}
		if now-c.state.WindowStart < c.state.WindowDuration {
			return
		}
		c.evaluateWindow(now, live)

	case domain.PhaseLastWaypoint:
		if following {
			return
		}
		if now-c.state.WindowStart < c.state.WindowDuration {
			return
		}
		if live.DistanceTo(c.state.TargetPosition) <= c.cfg.CorrectionThreshold {
			c.succeed()
			return
		}
		// Последний шанс исчерпан
		c.cancel()
	}
}

// evaluateWindow - окно Correcting истекло, решаем: успех или эскалация
func (c *CorrectionController) evaluateWindow(now float64, live geom.Vec) {
	if live.DistanceTo(c.state.TargetPosition) <= c.cfg.CorrectionThreshold {
		c.succeed()
		return
	}

	// Эскалация: окно удваивается и НИКОГДА не уменьшается
	// в пределах одной последовательности
	c.state.WindowDuration *= 2

	// Рескан вперед от прежней цели: берем САМУЮ ПОЗДНЮЮ опорную точку,
	// которая успевает в удвоенное окно
	next := c.latestSnapshotWithin(c.state.TargetIndex, now+c.state.WindowDuration)
	if next < 0 {
		c.enterLastWaypoint(now)
		return
	}

	c.state.WindowStart = now
	c.state.TargetIndex = next
	c.state.TargetPosition = c.rec.Events[next].Snapshot.Position
	c.nav.NavigateTo(c.state.TargetPosition)

	logger.ForSubject(c.rec.SubjectID).WithField("window", c.state.WindowDuration).
		Debug("Drift correction escalated")
}

// enterLastWaypoint целится в финальную опорную точку записи.
// Окно фиксированное, дальше не удваивается.
func (c *CorrectionController) enterLastWaypoint(now float64) {
	idx := c.rec.LastSnapshotIndex()
	if idx < 0 {
		c.cancel()
		return
	}

	target := c.rec.Events[idx].Snapshot.Position
	c.state = domain.CorrectionState{
		Phase:          domain.PhaseLastWaypoint,
		WindowStart:    now,
		WindowDuration: c.cfg.LastWaypointWindow,
		TargetPosition: target,
		TargetIndex:    idx,
	}
	c.nav.NavigateTo(target)

	logger.ForSubject(c.rec.SubjectID).Debug("Falling back to last waypoint")
}

// succeed - агент догнал точку рандеву, коррекция снимается.
// Курсор планировщика НЕ отматывается: воспроизведение продолжается
// оттуда, где курсор уже стоит.
func (c *CorrectionController) succeed() {
	c.nav.Stop()
	c.state = domain.CorrectionState{Phase: domain.PhaseFollowing}
}

// cancel - терминальный отказ. Вызывающий (агент) увидит фазу
// и синхронно погасит воспроизведение. Никаких паник.
func (c *CorrectionController) cancel() {
	c.nav.Stop()
	c.state = domain.CorrectionState{Phase: domain.PhaseCancelled}
	logger.ForSubject(c.rec.SubjectID).Warn("Drift correction exhausted, cancelling playback")
}

// Cancelled возвращает true в терминальной фазе
func (c *CorrectionController) Cancelled() bool {
	return c.state.Phase == domain.PhaseCancelled
}

// Reset возвращает контроллер в покой (рестарт цикла)
func (c *CorrectionController) Reset() {
	c.state = domain.CorrectionState{Phase: domain.PhaseFollowing}
}

// --- Поиск по ленте ---

// earliestFutureSnapshot - самое раннее событие со снапшотом строго позже now
func (c *CorrectionController) earliestFutureSnapshot(now float64) int {
	for i := range c.rec.Events {
		ev := &c.rec.Events[i]
		if ev.Timestamp > now && ev.HasSnapshot() {
			return i
		}
	}
	return -1
}

// earliestFutureMeaningful - самое раннее будущее событие, не являющееся
// чекпоинтом ("следующее осмысленное действие")
func (c *CorrectionController) earliestFutureMeaningful(now float64) int {
	for i := range c.rec.Events {
		ev := &c.rec.Events[i]
		if ev.Timestamp > now && ev.Action != domain.ActionCheckpoint {
			return i
		}
	}
	return -1
}

// latestSnapshotWithin - самая поздняя опорная точка после fromIdx,
// успевающая к deadline
func (c *CorrectionController) latestSnapshotWithin(fromIdx int, deadline float64) int {
	found := -1
	for i := fromIdx + 1; i < c.rec.Len(); i++ {
		ev := &c.rec.Events[i]
		if ev.Timestamp > deadline {
			break
		}
		if ev.HasSnapshot() {
			found = i
		}
	}
	return found
}
