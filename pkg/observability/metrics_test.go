package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/daymxn/story"
	"github.com/daymxn/story/internal/logging"
	"github.com/daymxn/story/pkg/adapters/memory"
	"github.com/daymxn/story/pkg/domain"
	"github.com/daymxn/story/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountCascade(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	window := memory.NewNode("window")
	panel, _ := window.NewChild("panel")

	s := story.Bind(window, func(s *story.Story) {
		s.OnRelease(func() {})
		s.Nest(panel, func(c *story.Story) {
			c.OnRelease(func() {})
		})
	}, story.WithLifecycleHooks(m.Hooks()))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Created))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Live))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Draws))

	s.Redraw()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Redraws))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Live), "old child destroyed, new child created")

	window.Destroy()

	assert.Equal(t, 0.0, testutil.ToFloat64(m.Live))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Destroys))
	// Every story holds two listeners: the redraw releases root + first child,
	// the destroy releases root + second child.
	assert.Equal(t, 8.0, testutil.ToFloat64(m.Releases))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestNewMetrics_NilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() { observability.NewMetrics(nil) })
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, slog.LevelDebug)

	hooks := domain.ChainHooks(observability.LogHooks(logger))
	story.New(story.WithName("logged"), story.WithLifecycleHooks(hooks)).OnRelease(func() {}).Destroy()

	out := buf.String()
	assert.Contains(t, out, "story_create")
	assert.Contains(t, out, "story_destroy")
	assert.Contains(t, out, "story=logged")
	assert.NotContains(t, out, "listener_release")
}
