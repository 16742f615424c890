package playback

// NotificationKind - тип уведомления движка
type NotificationKind uint8

const (
	NoteUnknown NotificationKind = iota
	// NoteAllStarted - все агенты получили start() в одном проходе.
	// Потребляется рекордером живого игрока: захват сессии начинается
	// только после старта воспроизведения NPC.
	NoteAllStarted
	// NoteCaptureStopped - захват остановлен, лента запечатана
	NoteCaptureStopped
	// NotePlaybackFinished - курсор агента дошел до конца ленты
	NotePlaybackFinished
	// NoteDriftDetected - отклонение агента превысило порог коррекции
	NoteDriftDetected
	// NoteAgentCancelled - агент терминально отменен
	NoteAgentCancelled
)

var noteNames = map[NotificationKind]string{
	NoteAllStarted:       "ALL_STARTED",
	NoteCaptureStopped:   "CAPTURE_STOPPED",
	NotePlaybackFinished: "PLAYBACK_FINISHED",
	NoteDriftDetected:    "DRIFT_DETECTED",
	NoteAgentCancelled:   "AGENT_CANCELLED",
}

func (k NotificationKind) String() string {
	if s, ok := noteNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Notification - одно уведомление. Вместо сигналов/колбеков: производители
// кладут в очередь, Оркестратор выгребает ее ровно один раз за тик.
type Notification struct {
	Kind      NotificationKind
	SubjectID string

	// NoteDriftDetected
	Deviation float64

	// NotePlaybackFinished
	Accuracy Summary

	// NoteAgentCancelled
	Reason string
}

// NotificationQueue - очередь уведомлений с доставкой минимум один раз.
// Движок однопоточный, поэтому без мьютексов: все производители и
// единственный потребитель живут в одном тике.
type NotificationQueue struct {
	pending []Notification
}

func NewNotificationQueue() *NotificationQueue {
	return &NotificationQueue{}
}

// Push добавляет уведомление
func (q *NotificationQueue) Push(n Notification) {
	q.pending = append(q.pending, n)
}

// Drain отдает все накопленные уведомления и очищает очередь.
// Уведомления, добавленные ВО ВРЕМЯ обработки, дождутся следующего тика.
func (q *NotificationQueue) Drain() []Notification {
	out := q.pending
	q.pending = nil
	return out
}

// Len возвращает количество ожидающих уведомлений
func (q *NotificationQueue) Len() int {
	return len(q.pending)
}
