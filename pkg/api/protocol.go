package api

import "encoding/json"

// --- СЕРВЕР -> КЛИЕНТ ---

// StatusUpdate - корневой объект, который сервер рассылает подписчикам
// сессии: слепок состояния оркестрации и всех воспроизводящихся агентов.
type StatusUpdate struct {
	// Type тип сообщения. На данный момент всегда "STATUS".
	Type string `json:"type"`

	// Tick номер тика оркестрации
	Tick int `json:"tick"`

	// AllStarted true после синхронного старта всех агентов
	AllStarted bool `json:"allStarted"`

	// Capturing true, пока идет захват живого игрока
	Capturing bool `json:"capturing"`

	// Agents срез всех агентов сессии
	Agents []AgentView `json:"agents,omitempty"`
}

// AgentView это DTO одного воспроизводящегося агента
type AgentView struct {
	SubjectID string `json:"subjectId"`

	// Phase фаза жизненного цикла: SPAWNED, INITIALIZED, LOADED, PLAYING, CANCELLED
	Phase string `json:"phase"`

	// CorrectionPhase фаза коррекции дрейфа: FOLLOWING, CORRECTING,
	// LAST_WAYPOINT, CANCELLED
	CorrectionPhase string `json:"correctionPhase"`

	Pos struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"pos"`

	Floor string `json:"floor,omitempty"`

	// SimElapsed симулированное время воспроизведения, сек
	SimElapsed float64 `json:"simElapsed"`

	// CursorIndex / EventCount - прогресс по ленте
	CursorIndex int `json:"cursorIndex"`
	EventCount  int `json:"eventCount"`

	// FollowTarget ID цели следования, если связь активна
	FollowTarget string `json:"followTarget,omitempty"`

	// Accuracy текущая статистика точности (может отсутствовать до старта)
	Accuracy *AccuracyView `json:"accuracy,omitempty"`
}

// AccuracyView это DTO статистики точности воспроизведения
type AccuracyView struct {
	Average     float64 `json:"average"`
	Max         float64 `json:"max"`
	SampleCount int     `json:"sampleCount"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID сессии клиента. Обязателен только для первого
	// сообщения "LOGIN".
	Token string `json:"token,omitempty"`

	// Action название команды управления.
	Action string `json:"action"`

	// Payload JSON-объект с данными команды. Структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Команды управления сессией (потребители ядра: CLI/UI)
const (
	CmdLogin          = "LOGIN"
	CmdRecordStart    = "RECORD_START"
	CmdRecordStop     = "RECORD_STOP"
	CmdSave           = "SAVE"
	CmdLoad           = "LOAD"
	CmdStats          = "STATS"
	CmdPlaybackToggle = "PLAYBACK_TOGGLE"
	CmdInput          = "INPUT"
)

// --- Payloads ---

// RecordStartPayload используется для RECORD_START
type RecordStartPayload struct {
	// ContinueExisting true - дописывать к прежним событиям,
	// false - начать с чистой ленты
	ContinueExisting bool `json:"continueExisting"`
}

// InputPayload используется для живого ввода игрока (edge-triggered)
type InputPayload struct {
	Action  string `json:"action"`
	Pressed bool   `json:"pressed"`
}
