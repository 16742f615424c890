package playback

// Config хранит параметры движка воспроизведения.
// Значения по умолчанию подобраны под пиксельные координаты мира.
type Config struct {
	// CorrectionThreshold - отклонение (px), после которого включается
	// догоняющая коррекция
	CorrectionThreshold float64

	// CheckpointSnapEpsilon - малое отклонение (px), при превышении которого
	// диспетчеризованный чекпоинт жестко притягивает агента к себе
	CheckpointSnapEpsilon float64

	// LastWaypointWindow - фиксированное окно последнего шанса, сек.
	// Не удваивается.
	LastWaypointWindow float64

	// StartTolerance - допуск (px) на инвариант t=0: после телепорта
	// на старте actual должен совпасть с expected. Превышение - warning.
	StartTolerance float64

	// FollowUpdateInterval - минимальный период пересчета точки
	// следования, сек
	FollowUpdateInterval float64

	// DefaultFollowDistance - дистанция следования, если запись ее не задала
	DefaultFollowDistance float64

	// LoopRestartDelay - пауза между завершением воспроизведения
	// и следующей итерацией цикла, сек
	LoopRestartDelay float64

	// MoverSpeed - скорость тела от направленного ввода, px/s
	MoverSpeed float64

	// NavigatorSpeed - скорость догоняющего движения навигатора, px/s.
	// Чуть выше обычной, иначе отставшему не догнать запись.
	NavigatorSpeed float64

	// ArriveEpsilon - радиус (px), в котором навигатор считает цель взятой
	ArriveEpsilon float64
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	return Config{
		CorrectionThreshold:   30.0,
		CheckpointSnapEpsilon: 0.5,
		LastWaypointWindow:    10.0,
		StartTolerance:        1.0,
		FollowUpdateInterval:  1.0,
		DefaultFollowDistance: 48.0,
		LoopRestartDelay:      1.0,
		MoverSpeed:            200.0,
		NavigatorSpeed:        260.0,
		ArriveEpsilon:         2.0,
	}
}
