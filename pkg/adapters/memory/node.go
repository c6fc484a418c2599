package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/daymxn/story/pkg/domain"
	"github.com/daymxn/story/pkg/ports"
)

// Node is an in-memory host object: a named UI-like node with children.
// Destroying a node notifies its subscribers once, then destroys its
// children. Safe for concurrent use.
type Node struct {
	mu        sync.Mutex
	name      string
	parent    *Node
	children  []*Node
	destroyed bool
	subs      []*subscription
}

type subscription struct {
	node *Node
	fn   func()
}

// Release unsubscribes. Safe to call more than once.
func (s *subscription) Release() {
	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, sub := range n.subs {
		if sub == s {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}

var _ ports.Host = (*Node)(nil)

// NewNode creates a detached, live node.
func NewNode(name string) *Node {
	return &Node{name: name}
}

// Name returns the node name. The name stays readable after destruction.
func (n *Node) Name() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.name
}

// SetName renames the node. A destroyed node is read-only.
func (n *Node) SetName(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.destroyed {
		return fmt.Errorf("rename %q: %w", n.name, domain.ErrHostDestroyed)
	}
	n.name = name
	return nil
}

// Destroyed probes the node by re-assigning its own name, which only fails
// once the node is torn down.
func (n *Node) Destroyed() bool {
	return ports.Probe(func() error {
		return n.SetName(n.Name())
	})
}

// OnDestroy subscribes fn to the node's destruction. Subscribing to a node
// that is already destroyed runs fn immediately.
func (n *Node) OnDestroy(fn func()) ports.Listener {
	sub := &subscription{node: n, fn: fn}
	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		if fn != nil {
			fn()
		}
		return ports.ListenerFunc(nil)
	}
	n.subs = append(n.subs, sub)
	n.mu.Unlock()
	return sub
}

// Subscribers returns the number of live destruction subscriptions.
func (n *Node) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

// Children returns the live children of the node.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	n.mu.Unlock()

	live := children[:0]
	for _, c := range children {
		if !c.Destroyed() {
			live = append(live, c)
		}
	}
	return live
}

// NewChild creates a node named name and appends it to n.
func (n *Node) NewChild(name string) (*Node, error) {
	child := NewNode(name)
	if err := n.Append(child); err != nil {
		return nil, err
	}
	return child, nil
}

// Append attaches child under n. Both nodes must be live and child must not
// already have a parent.
func (n *Node) Append(child *Node) error {
	if child == nil || child == n {
		return fmt.Errorf("append to %q: invalid child", n.Name())
	}
	if child.Destroyed() {
		return fmt.Errorf("append %q: %w", child.Name(), domain.ErrHostDestroyed)
	}

	child.mu.Lock()
	if child.parent != nil {
		child.mu.Unlock()
		return fmt.Errorf("append %q: node already has a parent", child.Name())
	}

	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		child.mu.Unlock()
		return fmt.Errorf("append to %q: %w", n.Name(), domain.ErrHostDestroyed)
	}
	n.children = append(n.children, child)
	n.mu.Unlock()

	child.parent = n
	child.mu.Unlock()
	return nil
}

// Destroy tears the node down: subscribers are notified in subscription
// order, then children are destroyed in insertion order. Calling Destroy on a
// destroyed node is a no-op.
func (n *Node) Destroy() {
	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		return
	}
	n.destroyed = true
	subs := n.subs
	n.subs = nil
	children := n.children
	n.mu.Unlock()

	for _, s := range subs {
		if s.fn != nil {
			s.fn()
		}
	}
	for _, c := range children {
		c.Destroy()
	}
}

// Find resolves a slash separated path of child names relative to n.
// An empty path resolves to n itself.
func (n *Node) Find(path string) (*Node, error) {
	current := n
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		var next *Node
		for _, c := range current.Children() {
			if c.Name() == part {
				next = c
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("find %q under %q: %w", part, current.Name(), domain.ErrHostNotFound)
		}
		current = next
	}
	return current, nil
}

// Walk visits n and its live descendants depth first. Returning false from fn
// skips the subtree of the visited node.
func (n *Node) Walk(fn func(depth int, node *Node) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(int, *Node) bool) {
	if !fn(depth, n) {
		return
	}
	for _, c := range n.Children() {
		walk(c, depth+1, fn)
	}
}
