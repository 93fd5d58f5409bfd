// Package redisqueue provides a redis-backed queue.Store. Per queue it
// keeps three sorted sets: delayed (scored by the not-before instant),
// ready (scored by the enqueue instant, which gives FIFO-of-eligible), and
// claimed (scored by the claim's visibility deadline). Envelope bodies live
// in per-job keys. Each claim call first promotes due delayed jobs and
// releases expired claims, then moves the head of the ready set into the
// claimed set with a single script, so two routers can never claim the
// same job and a crash mid-claim cannot strand one outside every set.
package redisqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
)

// Config holds the store's key layout and retry settings.
type Config struct {
	// Prefix namespaces every key. Defaults to "broccoli".
	Prefix string

	// MaxAttempts is the delivery ceiling before a job goes dead.
	// Defaults to 5.
	MaxAttempts int

	// VisibilityTimeout is how long a claim lasts before the job becomes
	// reclaimable. Defaults to 30 seconds.
	VisibilityTimeout time.Duration

	// Backoff computes retry delays. Defaults to queue.DefaultBackoff().
	Backoff queue.BackoffStrategy

	// PromoteBatch bounds how many due delayed jobs one claim call
	// promotes. Defaults to 50.
	PromoteBatch int
}

// Store is a redis-backed queue.Store.
type Store struct {
	rdb    redis.UniversalClient
	cfg    Config
	sink   queue.DeadLetterSink
	logger *slog.Logger
}

var _ queue.Store = (*Store)(nil)

// New creates a redis-backed store. sink may be nil, in which case dead
// letters are only logged and parked on the dead list. If logger is nil,
// the default logger is used.
func New(rdb redis.UniversalClient, cfg Config, sink queue.DeadLetterSink, logger *slog.Logger) *Store {
	if cfg.Prefix == "" {
		cfg.Prefix = "broccoli"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.VisibilityTimeout <= 0 {
		cfg.VisibilityTimeout = 30 * time.Second
	}
	if cfg.Backoff == nil {
		cfg.Backoff = queue.DefaultBackoff()
	}
	if cfg.PromoteBatch <= 0 {
		cfg.PromoteBatch = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		rdb:    rdb,
		cfg:    cfg,
		sink:   sink,
		logger: logger.With(slog.String("component", "redisqueue")),
	}
}

func (s *Store) delayedKey(t queue.Type) string { return fmt.Sprintf("%s:%s:delayed", s.cfg.Prefix, t) }
func (s *Store) readyKey(t queue.Type) string   { return fmt.Sprintf("%s:%s:ready", s.cfg.Prefix, t) }
func (s *Store) claimedKey(t queue.Type) string { return fmt.Sprintf("%s:%s:claimed", s.cfg.Prefix, t) }
func (s *Store) deadKey(t queue.Type) string    { return fmt.Sprintf("%s:%s:dead", s.cfg.Prefix, t) }
func (s *Store) jobKey(id uuid.UUID) string     { return fmt.Sprintf("%s:job:%s", s.cfg.Prefix, id) }

// claimScript pops the head of the ready set and records the claim marker
// in one atomic step. Doing this in two round-trips would leave a window
// where a crash strands the popped job in no set at all, invisible to both
// delivery and reclaim.
//
// KEYS[1] = ready set, KEYS[2] = claimed set, ARGV[1] = deadline score.
var claimScript = redis.NewScript(`
local popped = redis.call('ZPOPMIN', KEYS[1], 1)
if #popped == 0 then
  return false
end
redis.call('ZADD', KEYS[2], ARGV[1], popped[1])
return popped[1]
`)

// Enqueue implements queue.Store.
func (s *Store) Enqueue(ctx context.Context, t queue.Type, p queue.Payload, delay time.Duration) (uuid.UUID, error) {
	env, err := queue.NewEnvelope(t, p, delay, time.Now())
	if err != nil {
		return uuid.Nil, err
	}
	env.MaxAttempts = s.cfg.MaxAttempts

	data, err := json.Marshal(env)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.jobKey(env.ID), data, 0)
	if env.NotBefore.After(time.Now()) {
		pipe.ZAdd(ctx, s.delayedKey(t), redis.Z{
			Score:  float64(env.NotBefore.UnixMilli()),
			Member: env.ID.String(),
		})
	} else {
		pipe.ZAdd(ctx, s.readyKey(t), redis.Z{
			Score:  float64(env.EnqueuedAt.UnixNano()),
			Member: env.ID.String(),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Debug("job enqueued", "job_id", env.ID, "queue", t, "not_before", env.NotBefore)
	return env.ID, nil
}

// ClaimReady implements queue.Store.
func (s *Store) ClaimReady(ctx context.Context, t queue.Type) (*queue.Envelope, error) {
	if err := s.promoteDue(ctx, t); err != nil {
		return nil, err
	}
	if err := s.releaseExpired(ctx, t); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(s.cfg.VisibilityTimeout)
	id, err := claimScript.Run(ctx, s.rdb,
		[]string{s.readyKey(t), s.claimedKey(t)},
		deadline.UnixMilli()).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim ready job: %w", err)
	}

	env, err := s.loadEnvelope(ctx, id)
	if err != nil {
		// The claim marker exists but the body is unreadable; left in the
		// claimed set the id would bounce between claimed and ready forever.
		s.deadLetterUnreadable(ctx, t, s.claimedKey(t), id, err)
		return nil, err
	}

	env.State = queue.StateClaimed
	env.Attempts++
	// If this write is lost the claim marker still expires and the job
	// returns to ready, so at-least-once delivery holds.
	if err := s.saveEnvelope(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// promoteDue moves delayed jobs whose not-before instant has passed into
// the ready set, scored by their original enqueue time so undelayed jobs
// are not starved once a delayed one becomes eligible.
func (s *Store) promoteDue(ctx context.Context, t queue.Type) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	ids, err := s.rdb.ZRangeByScore(ctx, s.delayedKey(t), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: int64(s.cfg.PromoteBatch),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to scan delayed jobs: %w", err)
	}

	for _, id := range ids {
		env, err := s.loadEnvelope(ctx, id)
		if err != nil {
			// An orphaned member blocks promotion forever if left in place.
			s.deadLetterUnreadable(ctx, t, s.delayedKey(t), id, err)
			continue
		}
		pipe := s.rdb.TxPipeline()
		pipe.ZRem(ctx, s.delayedKey(t), id)
		pipe.ZAdd(ctx, s.readyKey(t), redis.Z{
			Score:  float64(env.EnqueuedAt.UnixNano()),
			Member: id,
		})
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to promote job %s: %w", id, err)
		}
	}
	return nil
}

// releaseExpired returns claimed jobs whose visibility deadline passed to
// the ready set.
func (s *Store) releaseExpired(ctx context.Context, t queue.Type) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	ids, err := s.rdb.ZRangeByScore(ctx, s.claimedKey(t), &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to scan claimed jobs: %w", err)
	}

	for _, id := range ids {
		env, err := s.loadEnvelope(ctx, id)
		if err != nil {
			s.deadLetterUnreadable(ctx, t, s.claimedKey(t), id, err)
			continue
		}
		env.State = queue.StatePending
		if err := s.saveEnvelope(ctx, env); err != nil {
			return err
		}
		pipe := s.rdb.TxPipeline()
		pipe.ZRem(ctx, s.claimedKey(t), id)
		pipe.ZAdd(ctx, s.readyKey(t), redis.Z{
			Score:  float64(env.EnqueuedAt.UnixNano()),
			Member: id,
		})
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to release job %s: %w", id, err)
		}
		s.logger.Warn("claim expired, job reclaimable",
			"job_id", id,
			"queue", t,
			"attempts", env.Attempts)
	}
	return nil
}

// Acknowledge implements queue.Store.
func (s *Store) Acknowledge(ctx context.Context, id uuid.UUID) error {
	env, err := s.loadEnvelope(ctx, id.String())
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.ZRem(ctx, s.claimedKey(env.Queue), id.String())
	pipe.Del(ctx, s.jobKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to acknowledge job %s: %w", id, err)
	}
	return nil
}

// Fail implements queue.Store.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, retry bool) error {
	env, err := s.loadEnvelope(ctx, id.String())
	if err != nil {
		return err
	}

	if retry && env.Attempts < env.MaxAttempts {
		delay := s.cfg.Backoff.Delay(env.Attempts)
		env.State = queue.StatePending
		env.NotBefore = time.Now().Add(delay)
		if err := s.saveEnvelope(ctx, env); err != nil {
			return err
		}
		pipe := s.rdb.TxPipeline()
		pipe.ZRem(ctx, s.claimedKey(env.Queue), id.String())
		pipe.ZAdd(ctx, s.delayedKey(env.Queue), redis.Z{
			Score:  float64(env.NotBefore.UnixMilli()),
			Member: id.String(),
		})
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to schedule retry for job %s: %w", id, err)
		}
		s.logger.Info("job scheduled for retry",
			"job_id", id,
			"queue", env.Queue,
			"attempts", env.Attempts,
			"retry_in", delay.String())
		return nil
	}

	cause := "retry ceiling exhausted"
	if !retry {
		cause = "permanent failure"
	}
	env.State = queue.StateDead
	if err := s.saveEnvelope(ctx, env); err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.ZRem(ctx, s.claimedKey(env.Queue), id.String())
	pipe.LPush(ctx, s.deadKey(env.Queue), id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to dead-letter job %s: %w", id, err)
	}

	s.logger.Error("job dead-lettered",
		"job_id", id,
		"queue", env.Queue,
		"attempts", env.Attempts,
		"cause", cause)
	if s.sink != nil {
		if err := s.sink.Record(ctx, env, cause); err != nil {
			s.logger.Error("failed to record dead letter", "job_id", id, "error", err)
		}
	}
	return nil
}

// deadLetterUnreadable evicts a job whose body cannot be read from the
// given sorted set and parks it on the dead list and the sink, so a corrupt
// entry stays operator-visible instead of looping or vanishing.
func (s *Store) deadLetterUnreadable(ctx context.Context, t queue.Type, setKey, id string, cause error) {
	pipe := s.rdb.TxPipeline()
	pipe.ZRem(ctx, setKey, id)
	pipe.LPush(ctx, s.deadKey(t), id)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("failed to park unreadable job", "job_id", id, "error", err)
		return
	}

	s.logger.Error("unreadable job data, dead-lettering", "job_id", id, "queue", t, "error", cause)
	if s.sink == nil {
		return
	}
	env := &queue.Envelope{
		Queue:   t,
		Payload: json.RawMessage(`{}`),
		State:   queue.StateDead,
	}
	if parsed, err := uuid.Parse(id); err == nil {
		env.ID = parsed
	}
	if err := s.sink.Record(ctx, env, fmt.Sprintf("unreadable job data: %v", cause)); err != nil {
		s.logger.Error("failed to record dead letter", "job_id", id, "error", err)
	}
}

func (s *Store) loadEnvelope(ctx context.Context, id string) (*queue.Envelope, error) {
	data, err := s.rdb.Get(ctx, fmt.Sprintf("%s:job:%s", s.cfg.Prefix, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", queue.ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	var env queue.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}
	return &env, nil
}

func (s *Store) saveEnvelope(ctx context.Context, env *queue.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", env.ID, err)
	}
	if err := s.rdb.Set(ctx, s.jobKey(env.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save job %s: %w", env.ID, err)
	}
	return nil
}
