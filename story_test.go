package story_test

import (
	"sync"
	"testing"

	"github.com/daymxn/story"
	"github.com/daymxn/story/pkg/adapters/memory"
	"github.com/daymxn/story/pkg/domain"
	"github.com/daymxn/story/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingListener records how often it was released.
type countingListener struct {
	mu       sync.Mutex
	releases int
}

func (l *countingListener) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
}

func (l *countingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releases
}

// panickyHost is a host whose liveness check blows up.
type panickyHost struct{}

func (panickyHost) Destroyed() bool                 { panic("host torn down") }
func (panickyHost) OnDestroy(func()) ports.Listener { panic("must not subscribe") }

type silentHost struct{ dead bool }

func (h *silentHost) Destroyed() bool                 { return h.dead }
func (h *silentHost) OnDestroy(func()) ports.Listener { return ports.ListenerFunc(func() {}) }

func TestNew_IsLiveAndEmpty(t *testing.T) {
	s := story.New()

	assert.False(t, s.Destroyed())
	assert.Zero(t, s.Listeners())
	assert.Empty(t, s.Children())
	assert.False(t, s.CanRedraw())
}

func TestStory_NameDefaultsToID(t *testing.T) {
	s := story.New()
	assert.Contains(t, s.Name(), "story-")

	named := story.New(story.WithName("inbox"))
	assert.Equal(t, "inbox", named.Name())
	assert.NotEqual(t, s.ID(), named.ID())
}

func TestDestroy_Idempotent(t *testing.T) {
	l := &countingListener{}
	child := story.New()
	grandchild := &countingListener{}
	child.AddListener(grandchild)

	s := story.New().AddListener(l).AddChild(child)

	assert.Same(t, s, s.Destroy())
	s.Destroy()

	assert.Equal(t, 1, l.count())
	assert.Equal(t, 1, grandchild.count())
	assert.True(t, s.Destroyed())
	assert.True(t, child.Destroyed())
}

func TestDestroyed_RejectsRegistrations(t *testing.T) {
	s := story.New().Destroy()

	l := &countingListener{}
	late := story.New()

	s.AddListener(l).AddChild(late)

	assert.Equal(t, 1, l.count(), "listener is released instead of stored")
	assert.True(t, late.Destroyed(), "child is destroyed instead of stored")
	assert.Zero(t, s.Listeners())
	assert.Empty(t, s.Children())
}

func TestAdd_IgnoresNil(t *testing.T) {
	s := story.New().AddListener(nil).AddChild(nil).OnRelease(nil)
	assert.Zero(t, s.Listeners())
	assert.Empty(t, s.Children())
}

func TestAddChild_IgnoresSelf(t *testing.T) {
	s := story.New()
	s.AddChild(s)
	assert.Empty(t, s.Children())
}

func TestBindTo_DestroyedHost(t *testing.T) {
	host := memory.NewNode("gone")
	host.Destroy()

	s := story.New().BindTo(host)

	assert.True(t, s.Destroyed())
	assert.Zero(t, s.Listeners())
	assert.Zero(t, host.Subscribers())
}

func TestBindTo_PanickingProbeCountsAsDestroyed(t *testing.T) {
	var s *story.Story
	require.NotPanics(t, func() {
		s = story.New().BindTo(panickyHost{})
	})
	assert.True(t, s.Destroyed())
}

func TestBindTo_OnDestroyedStoryIsNoop(t *testing.T) {
	host := memory.NewNode("live")
	story.New().Destroy().BindTo(host)
	assert.Zero(t, host.Subscribers())
}

func TestBindTo_HostDestructionDestroysStory(t *testing.T) {
	host := memory.NewNode("button")
	l := &countingListener{}
	s := story.New().BindTo(host).AddListener(l)
	require.Equal(t, 2, s.Listeners(), "subscription is tracked as a listener")

	host.Destroy()

	assert.True(t, s.Destroyed())
	assert.Equal(t, 1, l.count())
}

func TestBindTo_SubscriptionReleasedOnDestroy(t *testing.T) {
	host := memory.NewNode("button")
	s := story.New().BindTo(host)
	require.Equal(t, 1, host.Subscribers())

	s.Destroy()

	assert.Zero(t, host.Subscribers(), "no dangling callback into a torn-down story")
}

func TestBindTo_MultipleHosts(t *testing.T) {
	h1 := memory.NewNode("h1")
	h2 := memory.NewNode("h2")
	l := &countingListener{}
	s := story.New().BindTo(h1).BindTo(h2).AddListener(l)

	h2.Destroy()
	require.True(t, s.Destroyed())
	assert.Zero(t, h1.Subscribers(), "h1 subscription released by the teardown")

	h1.Destroy()
	assert.Equal(t, 1, l.count())
}

func TestCascade_DestroysWholeTree(t *testing.T) {
	lb := &countingListener{}
	b := story.New().AddListener(lb)
	var a, root *story.Story

	var destroyed []uint64
	hooks := domain.LifecycleHooks{OnDestroy: func(e *domain.StoryEvent) { destroyed = append(destroyed, e.StoryID) }}
	a = story.New(story.WithLifecycleHooks(hooks)).AddChild(b)
	root = story.New(story.WithLifecycleHooks(hooks)).AddChild(a)

	root.Destroy()

	assert.True(t, a.Destroyed())
	assert.True(t, b.Destroyed())
	assert.Equal(t, 1, lb.count())
	assert.Equal(t, []uint64{root.ID(), a.ID()}, destroyed)

	root.Destroy()
	a.Destroy()
	assert.Equal(t, 1, lb.count())
	assert.Len(t, destroyed, 2)
}

func TestDestroy_OrderListenersBeforeChildren(t *testing.T) {
	var order []string
	record := func(name string) func() { return func() { order = append(order, name) } }

	first := story.New().OnRelease(record("first/listener"))
	firstKid := story.New().OnRelease(record("first/kid/listener"))
	first.AddChild(firstKid)
	second := story.New().OnRelease(record("second/listener"))

	root := story.New().
		OnRelease(record("root/a")).
		AddChild(first).
		OnRelease(record("root/b")).
		AddChild(second)

	root.Destroy()

	assert.Equal(t, []string{
		"root/a", "root/b",
		"first/listener", "first/kid/listener",
		"second/listener",
	}, order)
}

func TestDestroy_DeepChainDoesNotOverflow(t *testing.T) {
	const depth = 100_000
	leaf := &countingListener{}
	root := story.New()
	current := root
	for i := 0; i < depth; i++ {
		next := story.New()
		current.AddChild(next)
		current = next
	}
	current.AddListener(leaf)

	root.Destroy()

	assert.True(t, current.Destroyed())
	assert.Equal(t, 1, leaf.count())
}

func TestDestroy_PanickingListenerDoesNotStopTeardown(t *testing.T) {
	after := &countingListener{}
	child := story.New()
	s := story.New().
		OnRelease(func() { panic("broken listener") }).
		AddListener(after).
		AddChild(child)

	require.NotPanics(t, func() { s.Destroy() })

	assert.Equal(t, 1, after.count())
	assert.True(t, child.Destroyed())
}

func TestDestroy_ReentrantFromListener(t *testing.T) {
	var s *story.Story
	late := &countingListener{}
	s = story.New().OnRelease(func() {
		s.Destroy()
		s.AddListener(late)
	})

	s.Destroy()

	assert.Equal(t, 1, late.count(), "registration during teardown is released immediately")
	assert.Zero(t, s.Listeners())
}

func TestBind_EndToEnd(t *testing.T) {
	host := memory.NewNode("window")
	childHost, err := host.NewChild("sidebar")
	require.NoError(t, err)

	l1, l2 := &countingListener{}, &countingListener{}
	leaf := &countingListener{}
	var child *story.Story

	s := story.Bind(host, func(s *story.Story) {
		s.AddListener(l1).AddListener(l2)
		child = story.Bind(childHost, func(c *story.Story) {
			c.AddListener(leaf)
		})
		s.AddChild(child)
	})

	require.False(t, s.Destroyed())
	assert.Equal(t, 3, s.Listeners(), "two listeners plus the host subscription")
	assert.Len(t, s.Children(), 1)

	host.Destroy()

	assert.True(t, s.Destroyed())
	assert.Equal(t, 1, l1.count())
	assert.Equal(t, 1, l2.count())
	assert.True(t, child.Destroyed())
	assert.Equal(t, 1, leaf.count())
}

func TestBind_DeadHostSkipsBuild(t *testing.T) {
	host := memory.NewNode("gone")
	host.Destroy()

	built := false
	s := story.Bind(host, func(*story.Story) { built = true })

	assert.True(t, s.Destroyed())
	assert.False(t, built)
	assert.False(t, s.CanRedraw())
}

func TestDraw_IsPureAddition(t *testing.T) {
	host := memory.NewNode("list")
	calls := 0
	s := story.Bind(host, func(s *story.Story) {
		calls++
		s.OnRelease(func() {})
	})
	require.Equal(t, 2, s.Listeners())

	s.Draw()

	assert.Equal(t, 2, calls)
	assert.Equal(t, 3, s.Listeners(), "existing listeners are kept")
}

func TestDraw_WithoutBuildIsNoop(t *testing.T) {
	s := story.New()
	assert.Same(t, s, s.Draw())
	assert.Zero(t, s.Listeners())
}

func TestDraw_BuildPanicPropagates(t *testing.T) {
	host := memory.NewNode("form")
	l := &countingListener{}

	assert.PanicsWithValue(t, "bad build", func() {
		story.Bind(host, func(s *story.Story) {
			s.AddListener(l)
			panic("bad build")
		})
	})
	assert.Equal(t, 1, host.Subscribers(), "registrations before the panic stay tracked")

	host.Destroy()
	assert.Equal(t, 1, l.count())
}

func TestRedraw_PreservesIdentityAndRebuilds(t *testing.T) {
	root := memory.NewNode("window")
	panel, _ := root.NewChild("panel")

	var leaves []*countingListener
	generation := 0
	parent := story.New()

	s := story.Bind(root, func(s *story.Story) {
		generation++
		s.Nest(panel, func(c *story.Story) {
			c.Nest(panel, func(g *story.Story) {
				leaf := &countingListener{}
				leaves = append(leaves, leaf)
				g.AddListener(leaf)
			})
		})
	})
	parent.AddChild(s)
	firstChild := s.Children()[0]

	got := s.Redraw()

	assert.Same(t, s, got)
	assert.Same(t, s, parent.Children()[0], "parent reference stays valid")
	assert.Equal(t, 2, generation)
	require.Len(t, leaves, 2)
	assert.Equal(t, 1, leaves[0].count(), "old subtree fully torn down")
	assert.Zero(t, leaves[1].count(), "new subtree is live")
	assert.True(t, firstChild.Destroyed())
	assert.False(t, s.Destroyed())
	assert.Len(t, s.Children(), 1)
	assert.NotSame(t, firstChild, s.Children()[0])
	assert.Equal(t, 1, root.Subscribers(), "host subscription replaced, not duplicated")
}

func TestRedraw_NoopCases(t *testing.T) {
	bare := story.New()
	l := &countingListener{}
	bare.AddListener(l)
	bare.Redraw()
	assert.Zero(t, l.count(), "constructed story has no build function")

	host := memory.NewNode("label")
	bound := story.New().BindTo(host)
	bound.Redraw()
	assert.Equal(t, 1, bound.Listeners(), "bound without build cannot redraw")

	calls := 0
	destroyed := story.Bind(memory.NewNode("x"), func(*story.Story) { calls++ }).Destroy()
	destroyed.Redraw()
	assert.Equal(t, 1, calls)
}

func TestRedraw_HostDestroyedMeanwhile(t *testing.T) {
	// silentHost dies without notifying, so the story is still live when redrawn.
	host := &silentHost{}
	calls := 0
	s := story.Bind(host, func(*story.Story) { calls++ })

	host.dead = true
	s.Redraw()

	assert.True(t, s.Destroyed())
	assert.Equal(t, 1, calls, "build does not run against a dead host")
}

func TestRedraw_ReentrantFromBuildIsIgnored(t *testing.T) {
	host := memory.NewNode("loop")
	calls := 0
	s := story.Bind(host, func(s *story.Story) {
		calls++
		s.Redraw()
		s.Draw()
	})

	assert.Equal(t, 1, calls)
	s.Redraw()
	assert.Equal(t, 2, calls)
}

func TestBuild_SelfDestroyContinuesAsNoop(t *testing.T) {
	host := memory.NewNode("toast")
	after := &countingListener{}
	var late *story.Story
	reached := false

	s := story.Bind(host, func(s *story.Story) {
		s.Destroy()
		s.AddListener(after)
		late = story.New()
		s.AddChild(late)
		reached = true
	})

	assert.True(t, reached, "build body keeps running")
	assert.True(t, s.Destroyed())
	assert.Equal(t, 1, after.count())
	assert.True(t, late.Destroyed())
	assert.Zero(t, host.Subscribers())
}

func TestBuild_SelfDestroySkipsDrawEvent(t *testing.T) {
	var events []domain.EventType
	record := func(e *domain.StoryEvent) { events = append(events, e.Type) }
	hooks := domain.LifecycleHooks{OnDraw: record, OnDestroy: record}

	story.Bind(memory.NewNode("toast"), func(s *story.Story) {
		s.Destroy()
	}, story.WithLifecycleHooks(hooks))

	assert.Equal(t, []domain.EventType{domain.EventStoryDestroy}, events)
}

func TestRedraw_FromReleasedListenerIsIgnored(t *testing.T) {
	host := memory.NewNode("panel")
	builds := 0
	nested := false

	s := story.Bind(host, func(s *story.Story) {
		builds++
		s.OnRelease(func() {
			if !nested {
				nested = true
				s.Redraw()
			}
		})
	})

	s.Redraw()

	assert.True(t, nested)
	assert.Equal(t, 2, builds)
	assert.Equal(t, 2, s.Listeners(), "host subscription plus one listener")
	assert.Equal(t, 1, host.Subscribers())
}

func TestDraw_FromReleasedListenerDuringRedrawIsIgnored(t *testing.T) {
	host := memory.NewNode("panel")
	builds := 0

	s := story.Bind(host, func(s *story.Story) {
		builds++
		if builds == 1 {
			s.OnRelease(func() { s.Draw() })
		}
	})

	s.Redraw()

	assert.Equal(t, 2, builds)
	assert.Equal(t, 1, s.Listeners(), "only the host subscription")
	assert.Equal(t, 1, host.Subscribers())
}

func TestRedraw_ListenerRegisteredDuringTeardownJoinsNewSet(t *testing.T) {
	host := memory.NewNode("panel")
	late := &countingListener{}
	first := true

	s := story.Bind(host, func(s *story.Story) {
		if !first {
			return
		}
		first = false
		s.OnRelease(func() { s.AddListener(late) })
	})

	s.Redraw()

	assert.Zero(t, late.count())
	assert.Equal(t, 2, s.Listeners(), "host subscription plus the late listener")

	s.Destroy()
	assert.Equal(t, 1, late.count())
}

func TestNest_InheritsHooksAndAttachesChild(t *testing.T) {
	var created []string
	hooks := domain.LifecycleHooks{
		OnCreate: func(e *domain.StoryEvent) { created = append(created, e.StoryName) },
	}
	root := memory.NewNode("window")
	child, _ := root.NewChild("child")

	s := story.Bind(root, func(s *story.Story) {
		s.Nest(child, func(*story.Story) {}, story.WithName("nested"))
	}, story.WithLifecycleHooks(hooks), story.WithName("top"))

	assert.Equal(t, []string{"top", "nested"}, created)
	require.Len(t, s.Children(), 1)
	assert.True(t, s.Children()[0].CanRedraw())

	child.Destroy()
	assert.True(t, s.Children()[0].Destroyed(), "nested story dies with its own host")
	assert.False(t, s.Destroyed(), "parent outlives a child host")
}

func TestNest_OnDestroyedStory(t *testing.T) {
	s := story.New().Destroy()
	built := false

	c := s.Nest(memory.NewNode("late"), func(*story.Story) { built = true })

	assert.True(t, c.Destroyed())
	assert.False(t, built)
}

func TestHooks_EventSequence(t *testing.T) {
	var events []domain.EventType
	record := func(e *domain.StoryEvent) { events = append(events, e.Type) }
	hooks := domain.LifecycleHooks{
		OnCreate: record, OnDraw: record, OnRedraw: record, OnDestroy: record, OnRelease: record,
	}
	host := memory.NewNode("window")

	s := story.Bind(host, func(s *story.Story) { s.OnRelease(func() {}) }, story.WithLifecycleHooks(hooks))
	s.Redraw()
	s.Destroy()

	assert.Equal(t, []domain.EventType{
		domain.EventStoryCreate,
		domain.EventStoryDraw,
		domain.EventStoryRedraw,
		domain.EventListenerRelease, // host subscription
		domain.EventListenerRelease, // build listener
		domain.EventStoryDraw,
		domain.EventStoryDestroy,
		domain.EventListenerRelease,
		domain.EventListenerRelease,
	}, events)
}

func TestStory_ConcurrentHostDestruction(t *testing.T) {
	hosts := make([]*memory.Node, 16)
	s := story.New()
	for i := range hosts {
		hosts[i] = memory.NewNode("h")
		s.BindTo(hosts[i])
	}
	leaf := &countingListener{}
	s.AddListener(leaf)

	var wg sync.WaitGroup
	for _, h := range hosts {
		wg.Add(1)
		go func(h *memory.Node) {
			defer wg.Done()
			h.Destroy()
		}(h)
	}
	wg.Wait()

	assert.True(t, s.Destroyed())
	assert.Equal(t, 1, leaf.count())
}
