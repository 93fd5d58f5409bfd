package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
)

// Handler processes one decoded job payload. Implementations receive the
// concrete payload variant for their queue, never an untyped blob.
type Handler interface {
	Handle(ctx context.Context, p queue.Payload) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, p queue.Payload) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, p queue.Payload) error {
	return f(ctx, p)
}

// Config holds the router's claim loop settings.
type Config struct {
	// PollInterval is how long a claim loop sleeps when its queue has no
	// eligible job. Defaults to 1 second.
	PollInterval time.Duration

	// Concurrency caps how many claimed jobs one queue processes at a
	// time. Defaults to 4.
	Concurrency int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		Concurrency:  4,
	}
}

// Router binds one handler per queue type and runs an independent claim
// loop for each. Loops run until Stop is called or the start context is
// cancelled.
type Router struct {
	store    queue.Store
	handlers map[queue.Type]Handler
	cfg      Config
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRouter creates a Router on top of the given store.
// If logger is nil, the default logger is used.
func NewRouter(store queue.Store, cfg Config, logger *slog.Logger) *Router {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		store:    store,
		handlers: make(map[queue.Type]Handler),
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "worker_router")),
	}
}

// Register binds a handler to a queue type. Must be called before Start;
// registering the same type twice is a programming error and panics.
func (r *Router) Register(t queue.Type, h Handler) {
	if _, exists := r.handlers[t]; exists {
		panic(fmt.Sprintf("handler already registered for queue %s", t))
	}
	r.handlers[t] = h
}

// Start launches one claim loop per registered queue type. The loops stop
// when ctx is cancelled or Stop is called.
func (r *Router) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	for t, h := range r.handlers {
		r.wg.Add(1)
		go r.claimLoop(ctx, t, h)
	}
	r.logger.Info("worker router started", "queues", len(r.handlers))
}

// Stop cancels the claim loops and waits for in-flight jobs to finish.
func (r *Router) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.logger.Info("worker router stopped")
}

// claimLoop repeatedly claims eligible jobs on one queue and hands them to
// the handler, up to the configured concurrency.
func (r *Router) claimLoop(ctx context.Context, t queue.Type, h Handler) {
	defer r.wg.Done()

	logger := r.logger.With(slog.String("queue", string(t)))
	logger.Debug("claim loop started")

	// Each in-flight job holds one slot; claiming blocks on a free slot so
	// a slow handler applies backpressure to its own queue only.
	slots := make(chan struct{}, r.cfg.Concurrency)
	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("claim loop stopping")
			return
		default:
		}

		env, err := r.store.ClaimReady(ctx, t)
		if err != nil {
			logger.Error("failed to claim job", "error", err)
			r.sleep(ctx)
			continue
		}
		if env == nil {
			r.sleep(ctx)
			continue
		}

		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			// Claimed but not processed; the visibility timeout returns it.
			return
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()
			defer func() { <-slots }()
			r.process(ctx, t, h, env, logger)
		}()
	}
}

// process executes one handler invocation and reports the outcome back to
// the store. Panics are contained here and treated as recoverable.
func (r *Router) process(ctx context.Context, t queue.Type, h Handler, env *queue.Envelope, logger *slog.Logger) {
	logger = logger.With(
		slog.String("job_id", env.ID.String()),
		slog.Int("attempt", env.Attempts))

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("handler panicked", "panic", rec)
			if err := r.store.Fail(ctx, env.ID, true); err != nil {
				logger.Error("failed to fail job after panic", "error", err)
			}
		}
	}()

	payload, err := env.DecodePayload()
	if err != nil {
		// A payload that cannot decode will never decode; retrying is useless.
		logger.Error("undecodable payload, dead-lettering", "error", err)
		if err := r.store.Fail(ctx, env.ID, false); err != nil {
			logger.Error("failed to dead-letter job", "error", err)
		}
		return
	}

	logger.Info("processing job")
	err = h.Handle(ctx, payload)

	switch {
	case err == nil:
		logger.Info("job completed")
		if err := r.store.Acknowledge(ctx, env.ID); err != nil {
			logger.Error("failed to acknowledge job", "error", err)
		}
	case IsPermanent(err):
		logger.Error("job failed permanently", "error", err)
		if err := r.store.Acknowledge(ctx, env.ID); err != nil {
			logger.Error("failed to acknowledge job", "error", err)
		}
	default:
		logger.Warn("job failed, will retry", "error", err)
		if err := r.store.Fail(ctx, env.ID, true); err != nil {
			logger.Error("failed to fail job", "error", err)
		}
	}
}

// sleep waits one poll interval or until the context is cancelled.
func (r *Router) sleep(ctx context.Context) {
	timer := time.NewTimer(r.cfg.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
