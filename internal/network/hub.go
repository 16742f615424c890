package network

import (
	"sync"

	"github.com/asherp/go-for-launch/pkg/api"
)

// Broadcaster занимается только рассылкой статусов сессии подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: SessionID -> Личный канал
	subscribers map[string]chan api.StatusUpdate
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.StatusUpdate),
	}
}

// Register создает личный канал для сессии наблюдателя
func (b *Broadcaster) Register(sessionID string) chan api.StatusUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[sessionID]; ok {
		close(old)
	}

	ch := make(chan api.StatusUpdate, 100)
	b.subscribers[sessionID] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[sessionID]; ok {
		close(ch)
		delete(b.subscribers, sessionID)
	}
}

// Broadcast отправляет статус всем подписчикам.
// Переполненный канал пропускается: медленный наблюдатель теряет кадры
// статуса, но не тормозит тик движка.
func (b *Broadcaster) Broadcast(msg api.StatusUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// SendTo отправляет статус конкретной сессии (Unicast)
func (b *Broadcaster) SendTo(sessionID string, msg api.StatusUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[sessionID]; ok {
		select {
		case ch <- msg:
		default:
		}
	}
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
