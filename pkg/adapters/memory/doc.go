// Package memory provides an in-memory host tree for stories.
//
// It stands in for a real UI toolkit in tests, examples and scene
// simulations.
package memory
