// Package http exposes a running scene simulation over HTTP: inspect the
// host and story trees, destroy hosts, redraw or destroy stories, stream
// lifecycle events and scrape metrics.
package http
