package playback

import "github.com/asherp/go-for-launch/internal/domain"

// Cursor - курсор воспроизведения одной записи.
// Index растет строго монотонно; единственный разрешенный откат - Reset
// при явном рестарте цикла.
type Cursor struct {
	rec *domain.Recording

	Index      int
	SimElapsed float64 // Симулированное время, сек
}

func NewCursor(rec *domain.Recording) *Cursor {
	return &Cursor{rec: rec}
}

// Recording возвращает запись, по которой идет курсор
func (c *Cursor) Recording() *domain.Recording {
	return c.rec
}

// Peek возвращает следующее непотребленное событие, или nil в конце ленты
func (c *Cursor) Peek() *domain.RecordedEvent {
	if c.Index >= c.rec.Len() {
		return nil
	}
	return &c.rec.Events[c.Index]
}

// Advance сдвигает курсор на одно событие
func (c *Cursor) Advance() {
	c.Index++
}

// Done возвращает true, когда курсор дошел до eventCount
func (c *Cursor) Done() bool {
	return c.Index >= c.rec.Len()
}

// Reset возвращает курсор в начало. Только для рестарта цикла.
func (c *Cursor) Reset() {
	c.Index = 0
	c.SimElapsed = 0
}
