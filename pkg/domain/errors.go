package domain

import "errors"

// ErrHostDestroyed is returned when an operation targets a host object that has already been torn down.
var ErrHostDestroyed = errors.New("host destroyed")

// ErrHostNotFound is returned when a host ID cannot be resolved.
var ErrHostNotFound = errors.New("host not found")

// ErrStoryNotFound is returned when a story ID cannot be resolved.
var ErrStoryNotFound = errors.New("story not found")

// ErrUnknownAction is returned when a scene step names an action that does not exist.
var ErrUnknownAction = errors.New("unknown action")

// ErrInvalidScene is returned when a scene definition is inconsistent.
var ErrInvalidScene = errors.New("invalid scene")
