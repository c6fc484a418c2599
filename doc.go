/*
Package story binds cleanup logic to the lifetime of host-owned objects such as UI nodes.

A Story is both a tree node and a lifecycle controller. It owns a list of
listeners (anything with a Release method) and a list of child stories. When
a host the story is bound to is destroyed, the story releases its listeners
and destroys its children, exactly once, recursively.

# Concept

The host toolkit owns the objects; a story only observes them through the
ports.Host contract ("am I destroyed?" and "tell me once when I am"). A build
function, run against the story, registers whatever must die with the host:
event subscriptions, timers, nested stories for descendant nodes.

	Live --Destroy / host destroyed / parent destroyed--> Destroyed

Destroyed is terminal. Every method remains safe on a destroyed story:
registrations are released or destroyed on the spot, and draws are no-ops.

# Redraw

Redraw refreshes a story in place. It tears down every listener and child,
then binds to the primary host again and re-runs the build function. The
story keeps its identity, so a parent holding it is unaffected. There is no
diffing: a redraw is always a full teardown and rebuild.

# Usage

	window := memory.NewNode("window")
	sidebar, _ := window.NewChild("sidebar")

	s := story.Bind(window, func(s *story.Story) {
		s.OnRelease(unsubscribeTheme)
		s.Nest(sidebar, func(c *story.Story) {
			c.AddListener(folderWatcher)
		})
	})

	s.Redraw()       // rebuild against fresh state
	window.Destroy() // tears down s, the nested story and every listener
*/
package story
