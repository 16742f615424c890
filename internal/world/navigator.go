package world

import "github.com/asherp/go-for-launch/pkg/geom"

// LineNavigator - простейшая реализация навигационной способности
// "веди к точке P, доложи о прибытии": прямолинейное движение с постоянной
// скоростью. Настоящий тайловый pathfinding - внешний коллаборатор;
// для headless-симуляции и тестов достаточно прямой.
type LineNavigator struct {
	body  *Body
	speed float64 // px/s

	target    *geom.Vec
	arriveEps float64
}

func NewLineNavigator(body *Body, speed, arriveEps float64) *LineNavigator {
	return &LineNavigator{
		body:      body,
		speed:     speed,
		arriveEps: arriveEps,
	}
}

// NavigateTo задает новую цель. Прежняя цель забывается.
func (n *LineNavigator) NavigateTo(target geom.Vec) {
	t := target
	n.target = &t
}

// Stop сбрасывает цель
func (n *LineNavigator) Stop() {
	n.target = nil
}

// Arrived возвращает true, если цели нет или она достигнута
func (n *LineNavigator) Arrived() bool {
	if n.target == nil {
		return true
	}
	return n.body.Position().DistanceTo(*n.target) <= n.arriveEps
}

// Navigating возвращает true, пока есть активная цель
func (n *LineNavigator) Navigating() bool {
	return n.target != nil && !n.Arrived()
}

// Tick двигает тело к цели. Перелет невозможен: последний шаг
// зажимается точно в цель.
func (n *LineNavigator) Tick(dt float64) {
	if n.target == nil {
		return
	}
	pos := n.body.Position()
	dist := pos.DistanceTo(*n.target)
	if dist <= n.arriveEps {
		n.body.SetPosition(*n.target)
		n.target = nil
		return
	}

	step := n.speed * dt
	if step >= dist {
		n.body.SetPosition(*n.target)
		n.target = nil
		return
	}
	dir := n.target.Sub(pos).Normalized()
	n.body.SetPosition(pos.Add(dir.Scale(step)))
}
