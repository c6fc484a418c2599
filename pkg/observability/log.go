package observability

import (
	"log/slog"

	"github.com/daymxn/story/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event at debug level.
// Listener releases are not logged; they are too chatty to be useful.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(e *domain.StoryEvent) {
		logger.Debug(string(e.Type),
			"story_id", e.StoryID,
			"story", e.StoryName,
			"listeners", e.Listeners,
			"children", e.Children,
		)
	}
	return domain.LifecycleHooks{
		OnCreate:  log,
		OnDraw:    log,
		OnRedraw:  log,
		OnDestroy: log,
	}
}
