package playback

// Summary - итоговая статистика точности воспроизведения
type Summary struct {
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Samples int     `json:"sample_count"`
}

// DriftDetector копит статистику отклонения живой позиции от ожидаемой.
// Сырая серия не хранится: для среднего и максимума достаточно
// бегущей суммы, а память при длинных сессиях не растет.
type DriftDetector struct {
	sum     float64
	max     float64
	samples int

	finalized bool
	final     Summary
}

func NewDriftDetector() *DriftDetector {
	return &DriftDetector{}
}

// Sample добавляет одно измерение отклонения (px)
func (d *DriftDetector) Sample(deviation float64) {
	if d.finalized {
		return
	}
	d.sum += deviation
	if deviation > d.max {
		d.max = deviation
	}
	d.samples++
}

// Summary возвращает текущую статистику. Доступна в любой момент.
func (d *DriftDetector) Summary() Summary {
	if d.finalized {
		return d.final
	}
	s := Summary{Max: d.max, Samples: d.samples}
	if d.samples > 0 {
		s.Average = d.sum / float64(d.samples)
	}
	return s
}

// Finalize фиксирует статистику один раз, по завершении воспроизведения.
// Дальнейшие Sample игнорируются.
func (d *DriftDetector) Finalize() Summary {
	if !d.finalized {
		d.final = d.Summary()
		d.finalized = true
	}
	return d.final
}

// Reset обнуляет детектор (рестарт цикла)
func (d *DriftDetector) Reset() {
	*d = DriftDetector{}
}
