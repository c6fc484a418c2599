package tui

import (
	"fmt"
	"strings"

	"github.com/daymxn/story/pkg/scene"
)

// Report renders a simulation run as markdown: the event trace followed by
// the final state of every story.
func Report(snap scene.Snapshot, trace []scene.TraceEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Scene %s\n\n", snap.Scene)

	sb.WriteString("## Trace\n\n")
	sb.WriteString("| # | Step | Event | Story | Listeners | Children |\n")
	sb.WriteString("|---|------|-------|-------|-----------|----------|\n")
	for _, e := range trace {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %d | %d |\n",
			e.Seq, e.Step, e.Event, e.Story, e.Listeners, e.Children)
	}

	sb.WriteString("\n## Final state\n\n")
	var stories func(depth int, views []scene.StoryView)
	stories = func(depth int, views []scene.StoryView) {
		for _, s := range views {
			state := "live"
			if s.Destroyed {
				state = "destroyed"
			}
			fmt.Fprintf(&sb, "%s- **%s** (%s, %d listeners)\n", strings.Repeat("  ", depth), s.Name, state, s.Listeners)
			stories(depth+1, s.Children)
		}
	}
	stories(0, snap.Stories)
	return sb.String()
}
