package domain

import "strings"

// ActionType - Внутренний числовой идентификатор записанного действия
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionJump
	ActionMouseClick
	ActionFloorChange
	ActionCheckpoint
	ActionFollowStart
	ActionFollowStop
	ActionObjectInteraction
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"move_up":             ActionMoveUp,
	"move_down":           ActionMoveDown,
	"move_left":           ActionMoveLeft,
	"move_right":          ActionMoveRight,
	"jump":                ActionJump,
	"mouse_click":         ActionMouseClick,
	"floor_change":        ActionFloorChange,
	"position_checkpoint": ActionCheckpoint,
	"npc_follow_start":    ActionFollowStart,
	"npc_follow_stop":     ActionFollowStop,
	"object_interaction":  ActionObjectInteraction,
}

// Маппинг для файла записи Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionMoveUp:            "move_up",
	ActionMoveDown:          "move_down",
	ActionMoveLeft:          "move_left",
	ActionMoveRight:         "move_right",
	ActionJump:              "jump",
	ActionMouseClick:        "mouse_click",
	ActionFloorChange:       "floor_change",
	ActionCheckpoint:        "position_checkpoint",
	ActionFollowStart:       "npc_follow_start",
	ActionFollowStop:        "npc_follow_stop",
	ActionObjectInteraction: "object_interaction",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	// Нечувствительность к регистру для надежности
	lower := strings.ToLower(s)
	if val, ok := actionStringToCmd[lower]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf и сериализации)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "unknown"
}

// IsDirectional возвращает true для четырех осевых действий движения.
// Только они участвуют в edge-triggered записи нажатий.
func (a ActionType) IsDirectional() bool {
	switch a {
	case ActionMoveUp, ActionMoveDown, ActionMoveLeft, ActionMoveRight:
		return true
	}
	return false
}

// Axis возвращает единичное смещение оси для направленного действия.
// Для остальных действий возвращает (0, 0).
func (a ActionType) Axis() (dx, dy int) {
	switch a {
	case ActionMoveUp:
		return 0, -1
	case ActionMoveDown:
		return 0, 1
	case ActionMoveLeft:
		return -1, 0
	case ActionMoveRight:
		return 1, 0
	}
	return 0, 0
}
