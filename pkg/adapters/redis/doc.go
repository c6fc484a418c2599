// Package redis provides a Redis-backed host for stories, allowing host
// objects owned by another process to drive story teardown.
package redis
