package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daymxn/story/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a scene file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Action is something a step does to a running scene.
type Action string

const (
	ActionDestroyHost  Action = "destroy-host"
	ActionDestroyStory Action = "destroy-story"
	ActionRedraw       Action = "redraw"
	ActionDraw         Action = "draw"
)

// ParseAction normalizes s ("destroy_host", "Destroy-Host") to a known action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	switch a {
	case ActionDestroyHost, ActionDestroyStory, ActionRedraw, ActionDraw:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownAction, s)
}

// targetsHost reports whether the action's target is a host path rather than
// a story name.
func (a Action) targetsHost() bool {
	return a == ActionDestroyHost
}

// HostSpec declares a host node and its children.
type HostSpec struct {
	Name     string     `yaml:"name" json:"name"`
	Children []HostSpec `yaml:"children,omitempty" json:"children,omitempty"`
}

// StorySpec declares a story bound to the host at Host (a slash separated
// path such as "window/sidebar"). Listeners is the number of plain listeners
// its build registers; Also lists extra hosts it is bound to.
type StorySpec struct {
	Name      string      `yaml:"name" json:"name"`
	Host      string      `yaml:"host" json:"host"`
	Listeners int         `yaml:"listeners,omitempty" json:"listeners,omitempty"`
	Also      []string    `yaml:"also,omitempty" json:"also,omitempty"`
	Children  []StorySpec `yaml:"children,omitempty" json:"children,omitempty"`
}

// Step is one scripted action.
type Step struct {
	Action Action `mapstructure:"action" json:"action"`
	Target string `mapstructure:"target" json:"target"`
}

func (s Step) String() string {
	return string(s.Action) + " " + s.Target
}

// Scene is a host tree, the stories bound to it and a script to run.
type Scene struct {
	Name     string      `yaml:"name" json:"name"`
	Hosts    []HostSpec  `yaml:"hosts" json:"hosts"`
	Stories  []StorySpec `yaml:"stories" json:"stories"`
	RawSteps []any       `yaml:"steps,omitempty" json:"steps,omitempty"`

	Steps []Step `yaml:"-" json:"-"`
}

// Load reads a scene file. Files ending in .json are decoded as JSON,
// everything else as YAML.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	format := FormatYAML
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = FormatJSON
	}
	return Parse(data, format)
}

// Parse decodes and validates a scene.
func Parse(data []byte, format Format) (*Scene, error) {
	var sc Scene
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("failed to parse scene json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("failed to parse scene yaml: %w", err)
		}
	}

	steps, err := decodeSteps(sc.RawSteps)
	if err != nil {
		return nil, err
	}
	sc.Steps = steps

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// decodeSteps accepts both the shorthand form ("redraw app") and the inline
// form ({action: redraw, target: app}).
func decodeSteps(raw []any) ([]Step, error) {
	steps := make([]Step, 0, len(raw))
	for i, item := range raw {
		var step Step
		switch v := item.(type) {
		case string:
			fields := strings.Fields(v)
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: step %d: expected \"<action> <target>\", got %q", domain.ErrInvalidScene, i, v)
			}
			step.Action, step.Target = Action(fields[0]), fields[1]
		case map[string]any, map[any]any:
			if err := mapstructure.Decode(v, &step); err != nil {
				return nil, fmt.Errorf("failed to decode inline step %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("%w: step %d: invalid step type %T", domain.ErrInvalidScene, i, v)
		}

		action, err := ParseAction(string(step.Action))
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		step.Action = action
		steps = append(steps, step)
	}
	return steps, nil
}

// Validate checks that names are unique and every reference resolves.
func (sc *Scene) Validate() error {
	if len(sc.Hosts) == 0 {
		return fmt.Errorf("%w: no hosts declared", domain.ErrInvalidScene)
	}

	hosts := make(map[string]bool)
	var walkHosts func(prefix string, specs []HostSpec) error
	walkHosts = func(prefix string, specs []HostSpec) error {
		for _, h := range specs {
			if h.Name == "" || strings.Contains(h.Name, "/") {
				return fmt.Errorf("%w: invalid host name %q", domain.ErrInvalidScene, h.Name)
			}
			path := joinPath(prefix, h.Name)
			if hosts[path] {
				return fmt.Errorf("%w: duplicate host %q", domain.ErrInvalidScene, path)
			}
			hosts[path] = true
			if err := walkHosts(path, h.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walkHosts("", sc.Hosts); err != nil {
		return err
	}

	stories := make(map[string]bool)
	var walkStories func(specs []StorySpec) error
	walkStories = func(specs []StorySpec) error {
		for _, s := range specs {
			if s.Name == "" {
				return fmt.Errorf("%w: story without a name", domain.ErrInvalidScene)
			}
			if stories[s.Name] {
				return fmt.Errorf("%w: duplicate story %q", domain.ErrInvalidScene, s.Name)
			}
			stories[s.Name] = true
			if !hosts[s.Host] {
				return fmt.Errorf("%w: story %q: %w %q", domain.ErrInvalidScene, s.Name, domain.ErrHostNotFound, s.Host)
			}
			for _, extra := range s.Also {
				if !hosts[extra] {
					return fmt.Errorf("%w: story %q: %w %q", domain.ErrInvalidScene, s.Name, domain.ErrHostNotFound, extra)
				}
			}
			if s.Listeners < 0 {
				return fmt.Errorf("%w: story %q: negative listener count", domain.ErrInvalidScene, s.Name)
			}
			if err := walkStories(s.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walkStories(sc.Stories); err != nil {
		return err
	}

	for i, step := range sc.Steps {
		if step.Action.targetsHost() {
			if !hosts[step.Target] {
				return fmt.Errorf("%w: step %d: %w %q", domain.ErrInvalidScene, i, domain.ErrHostNotFound, step.Target)
			}
			continue
		}
		if !stories[step.Target] {
			return fmt.Errorf("%w: step %d: %w %q", domain.ErrInvalidScene, i, domain.ErrStoryNotFound, step.Target)
		}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
