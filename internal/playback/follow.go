package playback

import (
	"github.com/asherp/go-for-launch/pkg/geom"
	"github.com/asherp/go-for-launch/pkg/logger"
)

// FollowTarget - доступ ТОЛЬКО на чтение к другому живому агенту.
// Единственный легальный способ межагентного взаимодействия.
type FollowTarget interface {
	SubjectID() string
	LivePosition() geom.Vec
	Alive() bool
}

// FollowController - вторичный режим ведения: агент держится за живым
// агентом вместо записи. Пока следование активно, оно главнее коррекции.
type FollowController struct {
	cfg Config
	nav Navigator

	target   FollowTarget
	distance float64

	// Момент и дистанция последнего пересчета точки следования
	lastIssueAt   float64
	lastIssueDist float64
	issued        bool

	// Визуальный индикатор связи (линия/маркер у внешнего рендера).
	// Движок только помнит, что индикатор показан, и гасит его при разрыве.
	indicatorShown bool
}

func NewFollowController(nav Navigator, cfg Config) *FollowController {
	return &FollowController{cfg: cfg, nav: nav}
}

// Active возвращает true, пока связь следования существует
func (f *FollowController) Active() bool {
	return f.target != nil
}

// Target возвращает текущую цель (nil, если следования нет)
func (f *FollowController) Target() FollowTarget {
	return f.target
}

// IndicatorShown сообщает, показан ли индикатор связи
func (f *FollowController) IndicatorShown() bool {
	return f.indicatorShown
}

// Follow начинает следование, заменяя прежнюю связь (ее индикатор
// гасится первым). Если цель дальше дистанции следования, сразу выдаем
// навигатору точку подхода.
func (f *FollowController) Follow(target FollowTarget, distance float64, now float64, self geom.Vec) {
	if f.target != nil {
		f.teardownIndicator()
	}
	if distance <= 0 {
		distance = f.cfg.DefaultFollowDistance
	}

	f.target = target
	f.distance = distance
	f.indicatorShown = true
	f.issued = false

	if d := self.DistanceTo(target.LivePosition()); d > distance {
		f.issueStandoff(now, self)
	}

	logger.Log.WithField("target_id", target.SubjectID()).Debug("Follow engaged")
}

// Tick ведет агента за целью. Возвращает true, если связь была разорвана
// на этом тике (цель уничтожена).
//
// Правила:
//   - цель невалидна -> авто-стоп;
//   - при локальном ручном вводе не рулим (игрок перехватил управление);
//   - ближе дистанции - не рулим, но связь сохраняется;
//   - дальше - пересчет точки подхода не чаще followUpdateInterval,
//     либо немедленно, если дистанция удвоилась с прошлого пересчета.
func (f *FollowController) Tick(now float64, self geom.Vec, manualOverride bool) bool {
	if f.target == nil {
		return false
	}
	if !f.target.Alive() {
		f.StopFollowing()
		return true
	}
	if manualOverride {
		return false
	}

	d := self.DistanceTo(f.target.LivePosition())
	if d <= f.distance {
		f.nav.Stop()
		f.issued = false
		return false
	}

	doubled := f.issued && f.lastIssueDist > 0 && d >= f.lastIssueDist*2
	stale := !f.issued || now-f.lastIssueAt >= f.cfg.FollowUpdateInterval
	if stale || doubled {
		f.issueStandoff(now, self)
	}
	return false
}

// StopFollowing разрывает связь и гасит индикатор
func (f *FollowController) StopFollowing() {
	if f.target == nil {
		return
	}
	logger.Log.WithField("target_id", f.target.SubjectID()).Debug("Follow stopped")
	f.target = nil
	f.issued = false
	f.nav.Stop()
	f.teardownIndicator()
}

// issueStandoff считает точку подхода на прямой между собой и целью,
// на followDistance ОТ цели, и выдает ее навигатору
func (f *FollowController) issueStandoff(now float64, self geom.Vec) {
	targetPos := f.target.LivePosition()
	standoff := geom.Standoff(self, targetPos, f.distance)
	f.nav.NavigateTo(standoff)
	f.lastIssueAt = now
	f.lastIssueDist = self.DistanceTo(targetPos)
	f.issued = true
}

func (f *FollowController) teardownIndicator() {
	f.indicatorShown = false
}
