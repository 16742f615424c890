package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/asherp/go-for-launch/internal/domain"
	"github.com/asherp/go-for-launch/pkg/geom"
)

// Load загружает запись субъекта из папки хранилища
func (s *RecordingStore) Load(subjectID string) (*domain.Recording, error) {
	return s.LoadPath(s.PathFor(subjectID))
}

// LoadPath загружает запись из произвольного файла.
// Любой сбой оставляет состояние вызывающего нетронутым: функция либо
// возвращает полностью собранный Recording, либо ошибку из таксономии.
func (s *RecordingStore) LoadPath(path string) (*domain.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingRecording, path)
	}
	return decodeRecording(data)
}

func decodeRecording(data []byte) (*domain.Recording, error) {
	var file fileRecording
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptSchema, err)
	}

	// Валидация версии. Чужая версия отклоняется, а не "подгоняется".
	if file.Version != domain.SchemaVersion {
		return nil, fmt.Errorf("%w: version %d (expected %d)",
			domain.ErrCorruptSchema, file.Version, domain.SchemaVersion)
	}

	rec := domain.NewRecording(file.PlayerName)

	for i := range file.Events {
		fe := &file.Events[i]

		action := domain.ParseAction(fe.Action)
		if action == domain.ActionUnknown {
			return nil, fmt.Errorf("%w: unknown action %q at event %d",
				domain.ErrCorruptSchema, fe.Action, i)
		}

		ev := domain.RecordedEvent{
			Timestamp:   fe.Timestamp,
			Action:      action,
			Pressed:     fe.Pressed,
			FromFloor:   fe.FromFloor,
			ToFloor:     fe.ToFloor,
			NpcID:       fe.NpcID,
			ObjectID:    fe.ClickedObjectID,
			WasAttached: fe.ObjectAttachmentState,
		}
		ev.FollowDistance = fe.FollowDistance

		if fe.PlayerPosition != nil {
			snap := &domain.Snapshot{
				Position: geom.Vec{X: fe.PlayerPosition.X, Y: fe.PlayerPosition.Y},
				Floor:    fe.Floor,
			}
			if fe.ZHeight != nil {
				snap.ZHeight = *fe.ZHeight
			}
			if fe.TilePosition != nil {
				snap.Tile = &geom.Vec{X: fe.TilePosition.X, Y: fe.TilePosition.Y}
			}
			ev.Snapshot = snap
		}
		if fe.ClickPosition != nil {
			ev.ClickPos = &geom.Vec{X: fe.ClickPosition.X, Y: fe.ClickPosition.Y}
		}
		if fe.NpcPosition != nil {
			ev.NpcPos = &geom.Vec{X: fe.NpcPosition.X, Y: fe.NpcPosition.Y}
		}

		// Append заодно проверяет инвариант неубывающих timestamps
		if err := rec.Append(ev); err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", domain.ErrCorruptSchema, i, err)
		}
	}

	// Загруженная запись неизменяема
	rec.Seal()
	return rec, nil
}
