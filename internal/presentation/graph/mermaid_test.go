package graph_test

import (
	"testing"

	"github.com/daymxn/story/internal/presentation/graph"
	"github.com/daymxn/story/pkg/scene"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	snap := scene.Snapshot{
		Scene: "mail",
		Hosts: []scene.HostView{{
			Name: "window", Path: "window",
			Children: []scene.HostView{{Name: "side-bar", Path: "window/side-bar", Destroyed: true}},
		}},
		Stories: []scene.StoryView{{
			Name: "app", Host: "window", Listeners: 3,
			Children: []scene.StoryView{{
				Name: "side", Host: "window/side-bar", Also: []string{"window"}, Destroyed: true,
			}},
		}},
	}

	out := graph.GenerateMermaid(snap)

	for _, want := range []string{
		"graph TD\n",
		`h_window[["window"]]`,
		"h_window --> h_window_side_bar",
		`s_app("app <br/> 3 listeners")`,
		"s_app --> s_side",
		`s_app -. "primary" .-> h_window`,
		"s_side -.-> h_window",
		"class h_window_side_bar destroyed;",
		"class s_side destroyed;",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "class s_app destroyed;")
}

func TestGenerateMermaid_NoDestroyedNoStyles(t *testing.T) {
	out := graph.GenerateMermaid(scene.Snapshot{
		Hosts: []scene.HostView{{Name: "w", Path: "w"}},
	})
	assert.NotContains(t, out, "classDef")
}
