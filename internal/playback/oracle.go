package playback

import (
	"sort"

	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/pkg/geom"
)

// Oracle отвечает на вопрос "где субъект ДОЛЖЕН быть в симулированное время t".
// Интерполирует только по событиям со снапшотами; индекс таких событий
// строится один раз при создании, так как запись неизменяема.
type Oracle struct {
	rec *domain.Recording
	// Индексы событий со снапшотами, в порядке ленты
	// (timestamps неубывающие по инварианту записи)
	snapIdx []int
}

func NewOracle(rec *domain.Recording) *Oracle {
	o := &Oracle{rec: rec}
	for i := range rec.Events {
		if rec.Events[i].HasSnapshot() {
			o.snapIdx = append(o.snapIdx, i)
		}
	}
	return o
}

// HasData возвращает true, если в записи есть хотя бы одна опорная позиция
func (o *Oracle) HasData() bool {
	return len(o.snapIdx) > 0
}

// ExpectedAt возвращает ожидаемые позицию, этаж и z-высоту в момент t.
//
// Краевые правила:
//   - t раньше первого снапшота -> первый снапшот как есть
//   - t позже последнего -> последний как есть
//   - пара скобок совпала по времени или это одно событие -> снапшот
//     без интерполяции (защита от деления на ноль)
//   - иначе линейная интерполяция позиции и z, фактор зажат в [0,1];
//     этаж всегда берется у РАННЕГО события - этажи дискретны
func (o *Oracle) ExpectedAt(t float64) (geom.Vec, string, float64) {
	if len(o.snapIdx) == 0 {
		return geom.Vec{}, "", 0
	}

	events := o.rec.Events
	first := events[o.snapIdx[0]].Snapshot
	last := events[o.snapIdx[len(o.snapIdx)-1]].Snapshot

	if t <= events[o.snapIdx[0]].Timestamp {
		return first.Position, first.Floor, first.ZHeight
	}
	if t >= events[o.snapIdx[len(o.snapIdx)-1]].Timestamp {
		return last.Position, last.Floor, last.ZHeight
	}

	// Ищем первый снапшот СТРОГО позже t; предыдущий - ранняя скобка
	after := sort.Search(len(o.snapIdx), func(i int) bool {
		return events[o.snapIdx[i]].Timestamp > t
	})
	before := after - 1

	evBefore := &events[o.snapIdx[before]]
	evAfter := &events[o.snapIdx[after]]

	span := evAfter.Timestamp - evBefore.Timestamp
	if span <= 0 || before == after {
		return evBefore.Snapshot.Position, evBefore.Snapshot.Floor, evBefore.Snapshot.ZHeight
	}

	f := geom.Clamp01((t - evBefore.Timestamp) / span)
	pos := geom.Lerp(evBefore.Snapshot.Position, evAfter.Snapshot.Position, f)
	z := geom.LerpScalar(evBefore.Snapshot.ZHeight, evAfter.Snapshot.ZHeight, f)
	return pos, evBefore.Snapshot.Floor, z
}
