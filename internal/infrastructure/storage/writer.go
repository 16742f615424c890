package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asherp/go-for-launch/internal/domain"
)

// fileRecording - точное представление файла записи на диске.
// Формат версионируется целиком: version не совпал - файл отклоняется,
// никаких попыток "подтянуть" чужую схему.
type fileRecording struct {
	Version    int         `json:"version"`
	PlayerName string      `json:"player_name"`
	Duration   float64     `json:"duration"`
	EventCount int         `json:"event_count"`
	Events     []fileEvent `json:"events"`
}

// fileEvent - одно событие в файле. Общие поля + опциональные поля
// конкретных действий (присутствуют только когда осмысленны).
type fileEvent struct {
	Timestamp float64 `json:"timestamp"`
	Action    string  `json:"action"`
	Pressed   bool    `json:"pressed"`

	// Снапшот позиции (есть у большинства событий)
	PlayerPosition *fileVec `json:"player_position,omitempty"`
	Floor          string   `json:"floor,omitempty"`
	ZHeight        *float64 `json:"z_height,omitempty"`
	TilePosition   *fileVec `json:"tile_position,omitempty"`

	// mouse_click (только pressed)
	ClickPosition *fileVec `json:"click_position,omitempty"`

	// floor_change
	FromFloor string `json:"from_floor,omitempty"`
	ToFloor   string `json:"to_floor,omitempty"`

	// npc_follow_start
	NpcID          string   `json:"npc_id,omitempty"`
	NpcPosition    *fileVec `json:"npc_position,omitempty"`
	FollowDistance float64  `json:"follow_distance,omitempty"`

	// object_interaction
	ClickedObjectID       string `json:"clicked_object_id,omitempty"`
	ObjectAttachmentState bool   `json:"object_attachment_state,omitempty"`
}

type fileVec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RecordingStore хранит записи по одной на субъекта:
// <dir>/<subject>.json, перезапись на месте при новом каноническом захвате.
type RecordingStore struct {
	Dir string
}

func NewRecordingStore(dir string) *RecordingStore {
	// Создаем папку если нет
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0755)
	}
	return &RecordingStore{Dir: dir}
}

// PathFor возвращает путь файла записи для субъекта
func (s *RecordingStore) PathFor(subjectID string) string {
	return filepath.Join(s.Dir, subjectID+".json")
}

// Save сериализует запись и атомарно кладет на диск (temp + rename).
// Ошибка записи оставляет запись в памяти нетронутой - повтор возможен.
func (s *RecordingStore) Save(rec *domain.Recording) error {
	data, err := encodeRecording(rec)
	if err != nil {
		return fmt.Errorf("failed to encode recording %q: %w", rec.SubjectID, err)
	}

	path := s.PathFor(rec.SubjectID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

// ListSubjects возвращает ID всех субъектов с сохраненными записями.
// Сортировка по идентичности субъекта, НЕ по времени файла:
// порядок спавна агентов должен быть воспроизводим от сессии к сессии.
func (s *RecordingStore) ListSubjects() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recordings dir %s: %w", s.Dir, err)
	}

	var subjects []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		subjects = append(subjects, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(subjects)
	return subjects, nil
}

func encodeRecording(rec *domain.Recording) ([]byte, error) {
	out := fileRecording{
		Version:    rec.Version,
		PlayerName: rec.SubjectID,
		Duration:   rec.Duration(),
		EventCount: rec.Len(),
		Events:     make([]fileEvent, 0, rec.Len()),
	}

	for i := range rec.Events {
		ev := &rec.Events[i]
		fe := fileEvent{
			Timestamp:             ev.Timestamp,
			Action:                ev.Action.String(),
			Pressed:               ev.Pressed,
			FromFloor:             ev.FromFloor,
			ToFloor:               ev.ToFloor,
			NpcID:                 ev.NpcID,
			FollowDistance:        ev.FollowDistance,
			ClickedObjectID:       ev.ObjectID,
			ObjectAttachmentState: ev.WasAttached,
		}
		if ev.Snapshot != nil {
			fe.PlayerPosition = &fileVec{X: ev.Snapshot.Position.X, Y: ev.Snapshot.Position.Y}
			fe.Floor = ev.Snapshot.Floor
			z := ev.Snapshot.ZHeight
			fe.ZHeight = &z
			if ev.Snapshot.Tile != nil {
				fe.TilePosition = &fileVec{X: ev.Snapshot.Tile.X, Y: ev.Snapshot.Tile.Y}
			}
		}
		if ev.ClickPos != nil {
			fe.ClickPosition = &fileVec{X: ev.ClickPos.X, Y: ev.ClickPos.Y}
		}
		if ev.NpcPos != nil {
			fe.NpcPosition = &fileVec{X: ev.NpcPos.X, Y: ev.NpcPos.Y}
		}
		out.Events = append(out.Events, fe)
	}

	return json.MarshalIndent(out, "", "  ")
}
