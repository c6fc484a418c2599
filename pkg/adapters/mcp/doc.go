// Package mcp exposes a running scene as a Model Context Protocol server, so
// agents can inspect the lifecycle trees and drive destroy and redraw steps
// as tools.
package mcp
