package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStoryCreate     EventType = "story_create"
	EventStoryDraw       EventType = "story_draw"
	EventStoryRedraw     EventType = "story_redraw"
	EventStoryDestroy    EventType = "story_destroy"
	EventListenerRelease EventType = "listener_release"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StoryEvent describes a lifecycle transition of a single story.
// Listeners and Children are the sizes of the story's collections at the
// moment the event fired (for a destroy, the amount about to be torn down).
type StoryEvent struct {
	EventBase
	StoryID   uint64 `json:"story_id"`
	StoryName string `json:"story_name"`
	Listeners int    `json:"listeners"`
	Children  int    `json:"children"`
}

// NewStoryEvent stamps an event with the current time.
func NewStoryEvent(t EventType, id uint64, name string, listeners, children int) *StoryEvent {
	return &StoryEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: t},
		StoryID:   id,
		StoryName: name,
		Listeners: listeners,
		Children:  children,
	}
}

// LifecycleHooks defines callbacks for story observability.
// Hooks run synchronously on the goroutine that caused the transition and
// must not block.
type LifecycleHooks struct {
	OnCreate  func(*StoryEvent)
	OnDraw    func(*StoryEvent)
	OnRedraw  func(*StoryEvent)
	OnDestroy func(*StoryEvent)
	OnRelease func(*StoryEvent)
}

// Emit dispatches e to the hook matching its type. Nil hooks are skipped.
func (h LifecycleHooks) Emit(e *StoryEvent) {
	var fn func(*StoryEvent)
	switch e.Type {
	case EventStoryCreate:
		fn = h.OnCreate
	case EventStoryDraw:
		fn = h.OnDraw
	case EventStoryRedraw:
		fn = h.OnRedraw
	case EventStoryDestroy:
		fn = h.OnDestroy
	case EventListenerRelease:
		fn = h.OnRelease
	}
	if fn != nil {
		fn(e)
	}
}

// IsZero reports whether no hook is set.
func (h LifecycleHooks) IsZero() bool {
	return h.OnCreate == nil && h.OnDraw == nil && h.OnRedraw == nil &&
		h.OnDestroy == nil && h.OnRelease == nil
}

// ChainHooks fans every event out to each of the given hook sets, in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	emit := func(e *StoryEvent) {
		for _, h := range hooks {
			h.Emit(e)
		}
	}
	return LifecycleHooks{
		OnCreate:  emit,
		OnDraw:    emit,
		OnRedraw:  emit,
		OnDestroy: emit,
		OnRelease: emit,
	}
}
