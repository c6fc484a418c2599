package scene

import "github.com/daymxn/story"

// HostView is the state of one host at snapshot time.
type HostView struct {
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Destroyed   bool       `json:"destroyed"`
	Subscribers int        `json:"subscribers"`
	Children    []HostView `json:"children,omitempty"`
}

// StoryView is the state of one story at snapshot time.
type StoryView struct {
	Name      string      `json:"name"`
	ID        uint64      `json:"id"`
	Host      string      `json:"host"`
	Also      []string    `json:"also,omitempty"`
	Destroyed bool        `json:"destroyed"`
	Listeners int         `json:"listeners"`
	CanRedraw bool        `json:"can_redraw"`
	Children  []StoryView `json:"children,omitempty"`
}

// Snapshot is a point-in-time view of a running scene.
type Snapshot struct {
	Scene   string      `json:"scene"`
	Hosts   []HostView  `json:"hosts"`
	Stories []StoryView `json:"stories"`
}

// Snapshot captures the current host and story trees. Destroyed hosts are
// included; destroyed stories appear with their (empty) collections.
func (sim *Simulator) Snapshot() Snapshot {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	snap := Snapshot{Scene: sim.scene.Name}
	for _, h := range sim.scene.Hosts {
		snap.Hosts = append(snap.Hosts, sim.hostView("", h))
	}
	for _, s := range sim.roots {
		snap.Stories = append(snap.Stories, sim.storyView(s))
	}
	return snap
}

func (sim *Simulator) hostView(prefix string, spec HostSpec) HostView {
	path := joinPath(prefix, spec.Name)
	node := sim.hosts[path]
	v := HostView{
		Name:        spec.Name,
		Path:        path,
		Destroyed:   node.Destroyed(),
		Subscribers: node.Subscribers(),
	}
	for _, c := range spec.Children {
		v.Children = append(v.Children, sim.hostView(path, c))
	}
	return v
}

func (sim *Simulator) storyView(s *story.Story) StoryView {
	spec := sim.specs[s.Name()]
	v := StoryView{
		Name:      s.Name(),
		ID:        s.ID(),
		Host:      spec.Host,
		Also:      spec.Also,
		Destroyed: s.Destroyed(),
		Listeners: s.Listeners(),
		CanRedraw: s.CanRedraw(),
	}
	for _, c := range s.Children() {
		v.Children = append(v.Children, sim.storyView(c))
	}
	return v
}
