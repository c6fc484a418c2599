package scene

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/daymxn/story"
	"github.com/daymxn/story/internal/logging"
	"github.com/daymxn/story/pkg/adapters/memory"
	"github.com/daymxn/story/pkg/domain"
)

// TraceEntry is one lifecycle event observed while running a scene.
type TraceEntry struct {
	Seq       int              `json:"seq"`
	Step      string           `json:"step"`
	Event     domain.EventType `json:"event"`
	Story     string           `json:"story"`
	Listeners int              `json:"listeners"`
	Children  int              `json:"children"`
}

// Simulator materializes a scene: hosts become memory nodes and stories are
// bound to them. Steps are then applied one at a time. Safe for concurrent use.
type Simulator struct {
	scene  *Scene
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	mu      sync.Mutex
	hosts   map[string]*memory.Node
	stories map[string]*story.Story
	specs   map[string]StorySpec
	roots   []*story.Story
	next    int
	current string

	traceMu sync.Mutex
	trace   []TraceEntry
}

// Option configures the Simulator.
type Option func(*Simulator)

// WithLogger configures the structured logger handed to every story.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithLifecycleHooks adds hooks (e.g. metrics) next to the built-in tracing.
// Repeated options accumulate.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulator) {
		s.hooks = domain.ChainHooks(s.hooks, hooks)
	}
}

// NewSimulator builds the host tree and binds every declared story.
func NewSimulator(sc *Scene, opts ...Option) (*Simulator, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sim := &Simulator{
		scene:   sc,
		logger:  logging.NewNop(),
		hosts:   make(map[string]*memory.Node),
		stories: make(map[string]*story.Story),
		specs:   make(map[string]StorySpec),
		current: "setup",
	}
	for _, opt := range opts {
		opt(sim)
	}

	for _, h := range sc.Hosts {
		sim.addHost("", nil, h)
	}
	sim.indexSpecs(sc.Stories)

	sim.mu.Lock()
	defer sim.mu.Unlock()
	for _, spec := range sc.Stories {
		s := story.Bind(sim.hosts[spec.Host], sim.build(spec), sim.options(spec)...)
		sim.stories[spec.Name] = s
		sim.roots = append(sim.roots, s)
	}
	return sim, nil
}

func (sim *Simulator) addHost(prefix string, parent *memory.Node, spec HostSpec) {
	path := joinPath(prefix, spec.Name)
	node := memory.NewNode(spec.Name)
	if parent != nil {
		// Both nodes are fresh and live, so Append cannot fail.
		_ = parent.Append(node)
	}
	sim.hosts[path] = node
	for _, c := range spec.Children {
		sim.addHost(path, node, c)
	}
}

func (sim *Simulator) indexSpecs(specs []StorySpec) {
	for _, spec := range specs {
		sim.specs[spec.Name] = spec
		sim.indexSpecs(spec.Children)
	}
}

func (sim *Simulator) options(spec StorySpec) []story.Option {
	return []story.Option{
		story.WithName(spec.Name),
		story.WithLogger(sim.logger),
		story.WithLifecycleHooks(domain.ChainHooks(sim.traceHooks(), sim.hooks)),
	}
}

// build returns the build function for spec. Nested stories are recreated on
// every draw, so the name index always points at the latest generation.
func (sim *Simulator) build(spec StorySpec) story.Build {
	return func(s *story.Story) {
		for i := 0; i < spec.Listeners; i++ {
			s.OnRelease(func() {})
		}
		for _, extra := range spec.Also {
			s.BindTo(sim.hosts[extra])
		}
		for _, c := range spec.Children {
			child := s.Nest(sim.hosts[c.Host], sim.build(c), story.WithName(c.Name))
			sim.stories[c.Name] = child
		}
	}
}

func (sim *Simulator) traceHooks() domain.LifecycleHooks {
	record := func(e *domain.StoryEvent) {
		sim.traceMu.Lock()
		defer sim.traceMu.Unlock()
		sim.trace = append(sim.trace, TraceEntry{
			Seq:       len(sim.trace) + 1,
			Step:      sim.current,
			Event:     e.Type,
			Story:     e.StoryName,
			Listeners: e.Listeners,
			Children:  e.Children,
		})
	}
	return domain.LifecycleHooks{
		OnCreate:  record,
		OnDraw:    record,
		OnRedraw:  record,
		OnDestroy: record,
		OnRelease: record,
	}
}

// Scene returns the scene being simulated.
func (sim *Simulator) Scene() *Scene {
	return sim.scene
}

// Host returns the host at path.
func (sim *Simulator) Host(path string) (*memory.Node, error) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	h, ok := sim.hosts[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrHostNotFound, path)
	}
	return h, nil
}

// Story returns the latest story registered under name.
func (sim *Simulator) Story(name string) (*story.Story, error) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	s, ok := sim.stories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoryNotFound, name)
	}
	return s, nil
}

// Apply runs a single step.
func (sim *Simulator) Apply(step Step) error {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	sim.traceMu.Lock()
	sim.current = step.String()
	sim.traceMu.Unlock()

	if step.Action.targetsHost() {
		h, ok := sim.hosts[step.Target]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrHostNotFound, step.Target)
		}
		sim.logger.Info("destroying host", "host", step.Target)
		h.Destroy()
		return nil
	}

	s, ok := sim.stories[step.Target]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrStoryNotFound, step.Target)
	}
	sim.logger.Info("applying step", "action", step.Action, "story", step.Target)
	switch step.Action {
	case ActionDestroyStory:
		s.Destroy()
	case ActionRedraw:
		s.Redraw()
	case ActionDraw:
		s.Draw()
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownAction, step.Action)
	}
	return nil
}

// Next applies the next scripted step. It reports false once the script is
// exhausted.
func (sim *Simulator) Next() (bool, error) {
	sim.mu.Lock()
	if sim.next >= len(sim.scene.Steps) {
		sim.mu.Unlock()
		return false, nil
	}
	index := sim.next
	step := sim.scene.Steps[index]
	sim.next++
	sim.mu.Unlock()

	if err := sim.Apply(step); err != nil {
		return true, fmt.Errorf("step %d (%s): %w", index, step, err)
	}
	return true, nil
}

// Run applies every remaining scripted step.
func (sim *Simulator) Run() error {
	for {
		more, err := sim.Next()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Trace returns a copy of the events recorded so far.
func (sim *Simulator) Trace() []TraceEntry {
	sim.traceMu.Lock()
	defer sim.traceMu.Unlock()
	out := make([]TraceEntry, len(sim.trace))
	copy(out, sim.trace)
	return out
}
