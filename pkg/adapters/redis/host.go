package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/daymxn/story/internal/logging"
	"github.com/daymxn/story/pkg/domain"
	"github.com/daymxn/story/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Host implements ports.Host on top of Redis.
//
// A host is live while its key exists. Destroying it deletes the key and
// publishes on the host's channel, so stories in any process bound to the same
// host ID are torn down.
type Host struct {
	client  *backend.Client
	id      string
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.Host = (*Host)(nil)

type Option func(*Host)

// WithPrefix sets the key prefix for hosts.
func WithPrefix(prefix string) Option {
	return func(h *Host) {
		h.prefix = prefix
	}
}

// WithTimeout bounds each liveness check.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithLogger configures a logger for subscription failures.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// NewHost returns a handle on the host with the given ID. It does not create
// the host; see Create.
func NewHost(client *backend.Client, id string, opts ...Option) *Host {
	h := &Host{
		client:  client,
		id:      id,
		prefix:  "story:host:",
		timeout: 2 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ID returns the host ID.
func (h *Host) ID() string {
	return h.id
}

// Key returns the Redis key holding the host's liveness marker.
func (h *Host) Key() string {
	return h.prefix + h.id
}

// Channel returns the Redis channel destruction is announced on.
func (h *Host) Channel() string {
	return h.Key() + ":destroyed"
}

// Create marks the host live.
func (h *Host) Create(ctx context.Context) error {
	if err := h.client.Set(ctx, h.Key(), "live", 0).Err(); err != nil {
		return fmt.Errorf("failed to create host %s: %w", h.id, err)
	}
	return nil
}

// Destroy deletes the liveness marker and announces the destruction.
func (h *Host) Destroy(ctx context.Context) error {
	pipe := h.client.TxPipeline()
	pipe.Del(ctx, h.Key())
	pipe.Publish(ctx, h.Channel(), h.id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to destroy host %s: %w", h.id, err)
	}
	return nil
}

// Destroyed reports whether the liveness marker is gone. A host that cannot
// be reached counts as destroyed.
func (h *Host) Destroyed() bool {
	return ports.Probe(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		n, err := h.client.Exists(ctx, h.Key()).Result()
		if err != nil {
			h.logger.Warn("redis host liveness check failed", "host", h.id, "error", err)
			return err
		}
		if n == 0 {
			return domain.ErrHostDestroyed
		}
		return nil
	})
}

// OnDestroy subscribes fn to the host's destruction channel. fn runs on a
// background goroutine, at most once. Releasing the subscription closes it.
func (h *Host) OnDestroy(fn func()) ports.Listener {
	ctx, cancel := context.WithCancel(context.Background())
	ps := h.client.Subscribe(ctx, h.Channel())

	var fired sync.Once
	fire := func() {
		if ctx.Err() != nil || fn == nil {
			return
		}
		fired.Do(fn)
	}
	go h.watch(ctx, ps, fire)

	var closed sync.Once
	return ports.ListenerFunc(func() {
		closed.Do(func() {
			cancel()
			_ = ps.Close()
		})
	})
}

func (h *Host) watch(ctx context.Context, ps *backend.PubSub, fire func()) {
	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() == nil {
			h.logger.Warn("redis host subscribe failed", "host", h.id, "error", err)
		}
		return
	}

	// The host may have died between the caller's liveness check and the
	// subscription being confirmed.
	if h.Destroyed() {
		fire()
		return
	}

	select {
	case <-ctx.Done():
	case _, ok := <-ps.Channel():
		if ok {
			fire()
		}
	}
}
