/*
Package scene runs declarative story simulations.

A scene file declares a host tree, the stories bound to it and a script of
steps. Steps come in two spellings:

	steps:
	  - redraw app                  # shorthand
	  - action: destroy-host        # inline
	    target: window/sidebar

The Simulator materializes hosts as memory nodes, binds the stories and
records every lifecycle event in a trace.
*/
package scene
