package domain

import "errors"

// Таксономия ошибок движка воспроизведения.
// Все они деградируют в определенное терминальное состояние, а не роняют
// процесс: сбой одного агента никогда не трогает соседей и Оркестратор.
var (
	// ErrMissingRecording - запрошенный файл записи отсутствует или нечитаем.
	// Загрузка прерывается, состояние в памяти не меняется.
	ErrMissingRecording = errors.New("recording file missing or unreadable")

	// ErrCorruptSchema - файл не парсится или имеет чужую версию схемы.
	// Загрузка отклоняется, прежняя запись в памяти остается как была.
	ErrCorruptSchema = errors.New("recording schema corrupt or unsupported version")

	// ErrNoPositionData - в записи нет ни одного события с позицией.
	// Спавн агента невозможен, агент не создается.
	ErrNoPositionData = errors.New("recording has no position-bearing events")

	// ErrRecordingSealed - попытка дописать в запечатанную запись
	ErrRecordingSealed = errors.New("recording is sealed")

	// ErrEventOutOfOrder - событие с timestamp меньше последнего записанного
	ErrEventOutOfOrder = errors.New("event timestamp precedes last recorded event")

	// ErrCaptureActive - операция несовместима с идущим захватом
	// (например, старт воспроизведения)
	ErrCaptureActive = errors.New("capture is active")

	// ErrEmptyRecording - воспроизведение требует непустую загруженную запись
	ErrEmptyRecording = errors.New("recording is empty or not loaded")
)
