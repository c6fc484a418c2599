package story

import (
	"log/slog"

	"github.com/daymxn/story/internal/logging"
	"github.com/daymxn/story/pkg/domain"
)

// settings holds the ambient configuration of a story. Stories created with
// Nest start from a copy of their parent's settings.
type settings struct {
	name   string
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option defines a functional option for configuring a Story.
type Option func(*settings)

// WithName sets a human readable name used in logs, events and tree views.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithLogger sets a custom structured logger for the story.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

func newSettings(base settings, opts []Option) settings {
	if base.logger == nil {
		base.logger = logging.NewNop()
	}
	for _, opt := range opts {
		opt(&base)
	}
	return base
}
