package geom

import "math"

// Vec - двумерный вектор в пиксельных координатах мира.
// Позиции хранятся в float64, так как интерполяция между снапшотами
// дает дробные значения.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add возвращает сумму векторов (не меняя текущий)
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub возвращает разность векторов
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale возвращает вектор, умноженный на скаляр
func (v Vec) Scale(k float64) Vec {
	return Vec{X: v.X * k, Y: v.Y * k}
}

// Length возвращает длину вектора
func (v Vec) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceTo возвращает точное евклидово расстояние до другой точки
func (v Vec) DistanceTo(o Vec) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Normalized возвращает единичный вектор того же направления.
// Нулевой вектор остается нулевым (деления на ноль нет).
func (v Vec) Normalized() Vec {
	l := v.Length()
	if l == 0 {
		return Vec{}
	}
	return Vec{X: v.X / l, Y: v.Y / l}
}

// Lerp возвращает линейную интерполяцию между a и b.
// t зажимается в [0,1], чтобы экстраполяции не было никогда.
func Lerp(a, b Vec, t float64) Vec {
	t = Clamp01(t)
	return Vec{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// LerpScalar интерполирует скаляр (используется для z-высоты)
func LerpScalar(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

// Clamp01 зажимает значение в диапазон [0,1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Standoff возвращает точку на отрезке [from, target] на расстоянии dist
// ОТ target. Если from и target совпадают, возвращает target
// (направления нет, вставать некуда).
func Standoff(from, target Vec, dist float64) Vec {
	dir := from.Sub(target).Normalized()
	if dir.Length() == 0 {
		return target
	}
	return target.Add(dir.Scale(dist))
}
