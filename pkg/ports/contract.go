package ports

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contractWait = 2 * time.Second
	contractTick = 5 * time.Millisecond
	contractIdle = 100 * time.Millisecond
)

// HostFixture is a fresh, live host plus the function that destroys it.
// Destroy must be safe to call more than once.
type HostFixture struct {
	Host    Host
	Destroy func()
}

// RunHostContract runs a suite of tests to verify that a Host implementation
// adheres to the defined interface contract. newFixture is called once per
// subtest and must return a live host.
func RunHostContract(t *testing.T, newFixture func(t *testing.T) HostFixture) {
	t.Run("Live host", func(t *testing.T) {
		f := newFixture(t)
		assert.False(t, f.Host.Destroyed(), "fresh host should be live")
		assert.False(t, f.Host.Destroyed(), "liveness check must not mutate the host")
	})

	t.Run("OnDestroy fires once", func(t *testing.T) {
		f := newFixture(t)
		var fired atomic.Int32
		sub := f.Host.OnDestroy(func() { fired.Add(1) })
		require.NotNil(t, sub, "OnDestroy should return a subscription")

		f.Destroy()
		f.Destroy()

		assert.Eventually(t, func() bool { return fired.Load() == 1 }, contractWait, contractTick)
		assert.Never(t, func() bool { return fired.Load() > 1 }, contractIdle, contractTick)
		assert.True(t, f.Host.Destroyed(), "host should report destroyed")

		sub.Release()
		sub.Release()
	})

	t.Run("Released subscription does not fire", func(t *testing.T) {
		f := newFixture(t)
		var fired atomic.Int32
		sub := f.Host.OnDestroy(func() { fired.Add(1) })
		sub.Release()

		f.Destroy()

		assert.Eventually(t, f.Host.Destroyed, contractWait, contractTick)
		assert.Never(t, func() bool { return fired.Load() > 0 }, contractIdle, contractTick)
	})

	t.Run("Multiple subscribers", func(t *testing.T) {
		f := newFixture(t)
		var a, b atomic.Int32
		f.Host.OnDestroy(func() { a.Add(1) })
		f.Host.OnDestroy(func() { b.Add(1) })

		f.Destroy()

		assert.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, contractWait, contractTick)
	})
}
