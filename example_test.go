package story_test

import (
	"fmt"

	"github.com/daymxn/story"
	"github.com/daymxn/story/pkg/adapters/memory"
)

// ExampleBind shows a story mirroring a small host tree. Destroying the root
// host tears down every listener in the tree.
func ExampleBind() {
	window := memory.NewNode("window")
	sidebar, _ := window.NewChild("sidebar")

	story.Bind(window, func(s *story.Story) {
		s.OnRelease(func() { fmt.Println("window: theme listener released") })
		s.Nest(sidebar, func(c *story.Story) {
			c.OnRelease(func() { fmt.Println("sidebar: folder watcher released") })
		})
	})

	window.Destroy()
	// Output:
	// window: theme listener released
	// sidebar: folder watcher released
}

// ExampleStory_Redraw shows a redraw re-running the build function against the
// same story.
func ExampleStory_Redraw() {
	label := memory.NewNode("label")
	count := 0

	s := story.Bind(label, func(s *story.Story) {
		count++
		fmt.Println("draw", count)
		s.OnRelease(func() { fmt.Println("release", count) })
	})

	s.Redraw()
	s.Destroy()
	// Output:
	// draw 1
	// release 1
	// draw 2
	// release 2
}
