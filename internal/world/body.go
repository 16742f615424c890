package world

import "github.com/asherp/go-for-launch/pkg/geom"

// Body - физическое тело агента в мире.
// Движок воспроизведения не занимается физикой: тело умеет ровно две вещи -
// интегрировать текущий ввод и телепортироваться. Все остальное (коллизии,
// изометрия, спрайты) живет у внешнего движка.
type Body struct {
	AgentID   string
	Pos       geom.Vec
	FloorName string
	Z         float64

	// MoveSpeed - скорость движения от направленного ввода, px/s
	MoveSpeed float64
}

func NewBody(agentID string, pos geom.Vec, floor string, moveSpeed float64) *Body {
	return &Body{
		AgentID:   agentID,
		Pos:       pos,
		FloorName: floor,
		MoveSpeed: moveSpeed,
	}
}

// Position возвращает текущую позицию
func (b *Body) Position() geom.Vec {
	return b.Pos
}

// SetPosition телепортирует тело (используется чекпоинтами и стартом воспроизведения)
func (b *Body) SetPosition(p geom.Vec) {
	b.Pos = p
}

// Floor возвращает имя текущего этажа
func (b *Body) Floor() string {
	return b.FloorName
}

// SetFloor переводит тело на другой этаж
func (b *Body) SetFloor(f string) {
	b.FloorName = f
}

// ZHeight возвращает высоту над полом
func (b *Body) ZHeight() float64 {
	return b.Z
}

// SetZHeight задает высоту над полом
func (b *Body) SetZHeight(z float64) {
	b.Z = z
}

// ApplyInput интегрирует направленный ввод за кадр.
// (dx, dy) - суммарная ось из флагов симулированного ввода, нормализуется,
// чтобы диагональ не была быстрее.
func (b *Body) ApplyInput(dx, dy float64, dt float64) {
	dir := geom.Vec{X: dx, Y: dy}.Normalized()
	b.Pos = b.Pos.Add(dir.Scale(b.MoveSpeed * dt))
}
