package observability

import (
	"github.com/daymxn/story/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for story lifecycles.
type Metrics struct {
	Created  prometheus.Counter
	Draws    prometheus.Counter
	Redraws  prometheus.Counter
	Destroys prometheus.Counter
	Releases prometheus.Counter
	Live     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_created_total",
			Help: "Total number of stories created",
		}),
		Draws: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_draws_total",
			Help: "Total number of completed build function runs",
		}),
		Redraws: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_redraws_total",
			Help: "Total number of redraws",
		}),
		Destroys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_destroyed_total",
			Help: "Total number of stories destroyed",
		}),
		Releases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_listeners_released_total",
			Help: "Total number of listeners released",
		}),
		Live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "story_live",
			Help: "Number of stories created and not yet destroyed",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Created, m.Draws, m.Redraws, m.Destroys, m.Releases, m.Live)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCreate: func(*domain.StoryEvent) {
			m.Created.Inc()
			m.Live.Inc()
		},
		OnDraw:   func(*domain.StoryEvent) { m.Draws.Inc() },
		OnRedraw: func(*domain.StoryEvent) { m.Redraws.Inc() },
		OnDestroy: func(*domain.StoryEvent) {
			m.Destroys.Inc()
			m.Live.Dec()
		},
		OnRelease: func(*domain.StoryEvent) { m.Releases.Inc() },
	}
}
