package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/daymxn/story/pkg/domain"
)

// StreamManager fans lifecycle events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- []byte]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- []byte]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new connection. The returned function unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe() (<-chan []byte, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan []byte, 64)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers returns the number of active connections.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every connection without blocking.
func (sm *StreamManager) Broadcast(msg []byte) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	send := func(e *domain.StoryEvent) {
		data, err := json.Marshal(e)
		if err != nil {
			sm.logger.Error("SSE: failed to encode event", "error", err)
			return
		}
		sm.Broadcast(data)
	}
	return domain.LifecycleHooks{
		OnCreate:  send,
		OnDraw:    send,
		OnRedraw:  send,
		OnDestroy: send,
		OnRelease: send,
	}
}
