package graph

import (
	"fmt"
	"strings"

	"github.com/daymxn/story/pkg/scene"
)

// GenerateMermaid produces a Mermaid flowchart of a scene snapshot.
// It applies semantic styling:
// - Host: [["Subroutine"]]
// - Story: ("Rounded")
// - Ownership (host tree, story tree): solid arrows
// - Bindings (story to host): dotted arrows, the primary one labelled
// Destroyed hosts and stories get the "destroyed" class.
func GenerateMermaid(snap scene.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var destroyed []string

	var hosts func(parentID string, views []scene.HostView)
	hosts = func(parentID string, views []scene.HostView) {
		for _, h := range views {
			id := hostID(h.Path)
			sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", id, h.Name))
			if parentID != "" {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))
			}
			if h.Destroyed {
				destroyed = append(destroyed, id)
			}
			hosts(id, h.Children)
		}
	}
	hosts("", snap.Hosts)

	var stories func(parentID string, views []scene.StoryView)
	stories = func(parentID string, views []scene.StoryView) {
		for _, s := range views {
			id := storyID(s.Name)
			sb.WriteString(fmt.Sprintf("    %s(\"%s <br/> %d listeners\")\n", id, s.Name, s.Listeners))
			if parentID != "" {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))
			}
			if s.Host != "" {
				sb.WriteString(fmt.Sprintf("    %s -. \"primary\" .-> %s\n", id, hostID(s.Host)))
			}
			for _, extra := range s.Also {
				sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", id, hostID(extra)))
			}
			if s.Destroyed {
				destroyed = append(destroyed, id)
			}
			stories(id, s.Children)
		}
	}
	stories("", snap.Stories)

	if len(destroyed) > 0 {
		sb.WriteString("\n    %% Lifecycle Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme (Light/Dark)
		sb.WriteString("    classDef destroyed fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		for _, id := range destroyed {
			sb.WriteString(fmt.Sprintf("    class %s destroyed;\n", id))
		}
	}

	return sb.String()
}

func hostID(path string) string {
	return "h_" + sanitizeMermaidID(path)
}

func storyID(name string) string {
	return "s_" + sanitizeMermaidID(name)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
