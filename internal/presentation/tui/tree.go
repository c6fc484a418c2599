package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/daymxn/story/pkg/scene"
	"github.com/muesli/termenv"
)

// PrintTree writes the host and story trees of a snapshot, one node per line.
// Live nodes are green, destroyed nodes faint.
func PrintTree(w io.Writer, snap scene.Snapshot, p termenv.Profile) {
	live := func(s string) termenv.Style { return p.String(s).Foreground(p.Color("#22c55e")) }
	dead := func(s string) termenv.Style { return p.String(s).Faint() }

	style := func(label string, destroyed bool) string {
		if destroyed {
			return dead(label + " (destroyed)").String()
		}
		return live(label).String()
	}

	fmt.Fprintln(w, p.String("hosts").Bold())
	var hosts func(depth int, views []scene.HostView)
	hosts = func(depth int, views []scene.HostView) {
		for _, h := range views {
			label := fmt.Sprintf("%s [%d subscribers]", h.Name, h.Subscribers)
			fmt.Fprintf(w, "%s└─ %s\n", strings.Repeat("   ", depth), style(label, h.Destroyed))
			hosts(depth+1, h.Children)
		}
	}
	hosts(0, snap.Hosts)

	fmt.Fprintln(w, p.String("stories").Bold())
	var stories func(depth int, views []scene.StoryView)
	stories = func(depth int, views []scene.StoryView) {
		for _, s := range views {
			label := fmt.Sprintf("%s @%s [%d listeners]", s.Name, s.Host, s.Listeners)
			fmt.Fprintf(w, "%s└─ %s\n", strings.Repeat("   ", depth), style(label, s.Destroyed))
			stories(depth+1, s.Children)
		}
	}
	stories(0, snap.Stories)
}
