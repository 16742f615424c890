package domain

// SchemaVersion - текущая версия формата файла записи.
// Файлы с другой версией отклоняются при загрузке, без попыток конвертации.
const SchemaVersion = 1

// Recording - полная запись сессии одного субъекта (игрока или NPC).
// Создается пустой при старте захвата, дополняется только во время захвата
// и становится неизменяемой после Seal. Перезагрузка из файла дает
// новый неизменяемый экземпляр.
type Recording struct {
	Version   int
	SubjectID string
	Events    []RecordedEvent

	sealed bool
}

// NewRecording создает пустую незапечатанную запись для субъекта
func NewRecording(subjectID string) *Recording {
	return &Recording{
		Version:   SchemaVersion,
		SubjectID: subjectID,
		Events:    make([]RecordedEvent, 0),
	}
}

// Append добавляет событие в конец ленты.
// Инвариант: timestamps неубывающие. Событие "из прошлого" отклоняется,
// равные timestamps разрешены и сохраняют порядок вставки (stable).
func (r *Recording) Append(e RecordedEvent) error {
	if r.sealed {
		return ErrRecordingSealed
	}
	if n := len(r.Events); n > 0 && e.Timestamp < r.Events[n-1].Timestamp {
		return ErrEventOutOfOrder
	}
	r.Events = append(r.Events, e)
	return nil
}

// Seal запечатывает запись. Дальнейшие Append отклоняются
// до нового startCapture (который создаст новый Recording).
func (r *Recording) Seal() {
	r.sealed = true
}

// Sealed возвращает true, если запись запечатана
func (r *Recording) Sealed() bool {
	return r.sealed
}

// Len возвращает количество событий
func (r *Recording) Len() int {
	return len(r.Events)
}

// Duration возвращает длительность записи в секундах
// (timestamp последнего события; пустая запись - 0).
func (r *Recording) Duration() float64 {
	if len(r.Events) == 0 {
		return 0
	}
	return r.Events[len(r.Events)-1].Timestamp
}

// FirstSnapshotIndex возвращает индекс первого события с позицией, или -1.
// С него начинается воспроизведение (точка телепорта агента на старте).
func (r *Recording) FirstSnapshotIndex() int {
	for i := range r.Events {
		if r.Events[i].HasSnapshot() {
			return i
		}
	}
	return -1
}

// LastSnapshotIndex возвращает индекс последнего события с позицией, или -1.
// Это цель состояния LastWaypoint у контроллера коррекции.
func (r *Recording) LastSnapshotIndex() int {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].HasSnapshot() {
			return i
		}
	}
	return -1
}
