package ports

// Listener is any resource that can be released when the story holding it is
// torn down. Release should be idempotent; a story calls it at most once.
type Listener interface {
	Release()
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func()

// Release calls f.
func (f ListenerFunc) Release() {
	if f != nil {
		f()
	}
}

// Host is an externally owned object (typically a UI node) whose destruction
// a story observes but never causes.
type Host interface {
	// Destroyed reports whether the host has already been torn down.
	// It must be free of side effects on a live host.
	Destroyed() bool

	// OnDestroy subscribes fn to the host's destruction. fn fires at most once
	// and only on actual destruction. Releasing the returned subscription
	// unsubscribes fn.
	OnDestroy(fn func()) Listener
}

// Probe runs an inert mutation against a host and reports whether the host is
// destroyed. Any error or panic raised by fn counts as "destroyed"; neither is
// propagated. It serves hosts that offer no direct liveness query.
func Probe(fn func() error) (destroyed bool) {
	defer func() {
		if r := recover(); r != nil {
			destroyed = true
		}
	}()
	return fn() != nil
}
