package story

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/daymxn/story/pkg/domain"
	"github.com/daymxn/story/pkg/ports"
)

// Build populates a story with listeners and child stories.
// It must register on the story it receives, never on a fresh one.
type Build func(s *Story)

var lastID atomic.Uint64

// Story binds cleanup logic to the lifetime of one or more hosts.
//
// A story owns its listeners and child stories exclusively. It is either live
// or destroyed; destruction is terminal and releases every listener and
// destroys every child exactly once. All methods are safe to call on a
// destroyed story.
type Story struct {
	id  uint64
	cfg settings

	mu        sync.Mutex
	destroyed bool
	drawing   bool
	redrawing bool
	listeners []ports.Listener
	children  []*Story
	build     Build
	host      ports.Host // primary host, the anchor Redraw rebuilds against
}

// New returns a live story with no build function and no primary host.
// Such a story can hold listeners and children but cannot be redrawn.
func New(opts ...Option) *Story {
	return newStory(newSettings(settings{}, opts))
}

// Bind creates a story anchored to host, subscribes it to the host's
// destruction and runs build against it.
//
// If host is already destroyed the returned story is destroyed too and build
// never runs.
func Bind(host ports.Host, build Build, opts ...Option) *Story {
	return newStory(newSettings(settings{}, opts)).anchor(host, build)
}

func newStory(cfg settings) *Story {
	s := &Story{id: lastID.Add(1), cfg: cfg}
	s.emit(domain.EventStoryCreate, 0, 0)
	return s
}

// ID returns the process-unique identifier of the story.
func (s *Story) ID() uint64 {
	return s.id
}

// Name returns the configured name, or "story-<id>" when none was set.
func (s *Story) Name() string {
	if s.cfg.name != "" {
		return s.cfg.name
	}
	return "story-" + strconv.FormatUint(s.id, 10)
}

// Destroyed reports whether the story has been torn down.
func (s *Story) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Listeners returns the number of listeners currently tracked.
func (s *Story) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Children returns a copy of the child stories currently tracked.
func (s *Story) Children() []*Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Story, len(s.children))
	copy(out, s.children)
	return out
}

// CanRedraw reports whether Redraw would rebuild the story.
func (s *Story) CanRedraw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.destroyed && s.host != nil && s.build != nil
}

// AddListener tracks l for release when the story is detached or destroyed.
// On a destroyed story l is released immediately instead.
func (s *Story) AddListener(l ports.Listener) *Story {
	if l == nil {
		return s
	}
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		s.release(l)
		return s
	}
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
	return s
}

// OnRelease tracks fn as a listener.
func (s *Story) OnRelease(fn func()) *Story {
	if fn == nil {
		return s
	}
	return s.AddListener(ports.ListenerFunc(fn))
}

// AddChild makes c a child of the story, so it is destroyed with it.
// On a destroyed story c is destroyed immediately instead.
func (s *Story) AddChild(c *Story) *Story {
	if c == nil || c == s {
		return s
	}
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		c.Destroy()
		return s
	}
	s.children = append(s.children, c)
	s.mu.Unlock()
	return s
}

// Nest creates a child story anchored to host and built by build, inheriting
// the logger and hooks of s. The child is added before build runs. It returns
// the child.
func (s *Story) Nest(host ports.Host, build Build, opts ...Option) *Story {
	base := s.cfg
	base.name = ""
	c := newStory(newSettings(base, opts))
	s.AddChild(c)
	return c.anchor(host, build)
}

// BindTo ties the story to the lifetime of h: when h is destroyed the story is
// destroyed. A story may be bound to any number of hosts. Binding to a host
// that is already destroyed destroys the story immediately.
func (s *Story) BindTo(h ports.Host) *Story {
	if h == nil || s.Destroyed() {
		return s
	}
	if hostDestroyed(h) {
		return s.Destroy()
	}
	return s.AddListener(h.OnDestroy(func() { s.Destroy() }))
}

// Draw runs the build function against the story. It only adds: existing
// listeners and children are left in place. Draw is a no-op on a destroyed
// story, on a story without a build function, and when called from within the
// story's own build function or while the story is being redrawn.
//
// A panic raised by the build function propagates to the caller; whatever it
// registered before panicking stays tracked.
func (s *Story) Draw() *Story {
	return s.draw(false)
}

// draw runs build. attaching is set when called from attach, which must run
// the build even in the middle of a redraw.
func (s *Story) draw(attaching bool) *Story {
	s.mu.Lock()
	build := s.build
	if s.destroyed || build == nil || s.drawing || (s.redrawing && !attaching) {
		reentrant := s.drawing || s.redrawing
		s.mu.Unlock()
		if reentrant {
			s.cfg.logger.Debug("ignoring nested draw", "story", s.Name())
		}
		return s
	}
	s.drawing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.drawing = false
		s.mu.Unlock()
	}()

	build(s)

	s.mu.Lock()
	dead := s.destroyed
	l, c := len(s.listeners), len(s.children)
	s.mu.Unlock()
	if !dead {
		s.emit(domain.EventStoryDraw, l, c)
	}
	return s
}

// Redraw tears down every listener and child of the story, without destroying
// the story itself, then binds it to its primary host again and re-runs its
// build function. The story keeps its identity, so references held by its
// parent stay valid.
//
// Redraw is a no-op unless the story was created with Bind or Nest and is
// still live. It is ignored when called while the story is already being
// redrawn, including from a listener released by the teardown or from the
// story's own build. Listeners registered during the teardown belong to the
// new set.
func (s *Story) Redraw() *Story {
	s.mu.Lock()
	host, build := s.host, s.build
	if s.destroyed || host == nil || build == nil || s.drawing || s.redrawing {
		reentrant := s.drawing || s.redrawing
		s.mu.Unlock()
		if reentrant {
			s.cfg.logger.Debug("ignoring nested redraw", "story", s.Name())
		}
		return s
	}
	s.redrawing = true
	l, c := len(s.listeners), len(s.children)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.redrawing = false
		s.mu.Unlock()
	}()

	s.emit(domain.EventStoryRedraw, l, c)
	s.cfg.logger.Debug("redrawing story", "story", s.Name(), "listeners", l, "children", c)

	s.detach()
	return s.attach(host, build)
}

// Destroy tears the story down: it is marked destroyed first, then its
// listeners are released and its children destroyed, in insertion order.
// Calling Destroy again is a no-op.
func (s *Story) Destroy() *Story {
	if !s.markDestroyed() {
		return s
	}
	s.detach()
	return s
}

// anchor records host as the primary host and attaches.
func (s *Story) anchor(host ports.Host, build Build) *Story {
	s.mu.Lock()
	if !s.destroyed {
		s.host = host
	}
	s.mu.Unlock()
	return s.attach(host, build)
}

func (s *Story) attach(host ports.Host, build Build) *Story {
	s.BindTo(host)
	s.mu.Lock()
	if !s.destroyed {
		s.build = build
	}
	s.mu.Unlock()
	return s.draw(true)
}

// detach releases every listener, then destroys every child. The destroyed
// flag of s itself is left untouched.
func (s *Story) detach() {
	destroyAll(s.unlink())
}

// unlink empties both collections, releases the listeners in order and
// returns the children for the caller to destroy. The collections are swapped
// out before any listener runs, so registrations made by a releasing listener
// land in the fresh collections.
func (s *Story) unlink() []*Story {
	s.mu.Lock()
	listeners, children := s.listeners, s.children
	s.listeners, s.children = nil, nil
	s.mu.Unlock()

	for _, l := range listeners {
		s.release(l)
	}
	return children
}

// destroyAll destroys each story and its whole subtree in pre-order, using an
// explicit stack so arbitrarily deep trees cannot overflow the goroutine stack.
func destroyAll(stories []*Story) {
	stack := pushReversed(nil, stories)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack[len(stack)-1] = nil
		stack = stack[:len(stack)-1]

		if !n.markDestroyed() {
			continue
		}
		stack = pushReversed(stack, n.unlink())
	}
}

func pushReversed(stack, stories []*Story) []*Story {
	for i := len(stories) - 1; i >= 0; i-- {
		stack = append(stack, stories[i])
	}
	return stack
}

// markDestroyed moves the story to the destroyed state and reports whether
// this call performed the transition.
func (s *Story) markDestroyed() bool {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return false
	}
	s.destroyed = true
	s.host = nil
	s.build = nil
	l, c := len(s.listeners), len(s.children)
	s.mu.Unlock()

	s.emit(domain.EventStoryDestroy, l, c)
	s.cfg.logger.Debug("story destroyed", "story", s.Name(), "listeners", l, "children", c)
	return true
}

// release calls l.Release. A panicking listener is logged and skipped so the
// rest of the teardown still runs.
func (s *Story) release(l ports.Listener) {
	defer func() {
		if r := recover(); r != nil {
			s.cfg.logger.Warn("listener release panicked", "story", s.Name(), "error", fmt.Errorf("%v", r))
		}
	}()
	l.Release()
	s.emit(domain.EventListenerRelease, 0, 0)
}

func (s *Story) emit(t domain.EventType, listeners, children int) {
	if s.cfg.hooks.IsZero() {
		return
	}
	s.cfg.hooks.Emit(domain.NewStoryEvent(t, s.id, s.Name(), listeners, children))
}

var errHostGone = fmt.Errorf("host: %w", domain.ErrHostDestroyed)

// hostDestroyed asks h whether it is destroyed. A host whose liveness check
// panics is treated as destroyed.
func hostDestroyed(h ports.Host) bool {
	return ports.Probe(func() error {
		if h.Destroyed() {
			return errHostGone
		}
		return nil
	})
}
