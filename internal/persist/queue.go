// Package persist runs answer persistence on a background queue so the
// chat never waits on network latency. Jobs are retried independently of
// the UI pacing timer and failures land in the event log instead of
// being dropped.
package persist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pathway-dev/pathway/internal/assessment"
	"github.com/pathway-dev/pathway/internal/log"
)

// Job is one answer-persistence request. Jobs carry the question id so
// anything the backend sends back can be matched against the question it
// answered; replies for questions the session has moved past are
// discarded rather than applied.
type Job struct {
	UserID     string
	SessionID  string
	QuestionID string
	Answer     assessment.Answer
	EnqueuedAt time.Time
}

// SubmitFunc sends one job to the backend. The backend's reply payload
// (next question, counters) is dropped by the adapter: local question
// order is authoritative and stale replies must not reach the session.
type SubmitFunc func(ctx context.Context, job Job) error

// Queue is a bounded background queue with per-job retry.
type Queue struct {
	submit      SubmitFunc
	logger      *log.Logger
	jobs        chan Job
	maxAttempts int
	backoff     time.Duration
	timeout     time.Duration

	pending sync.WaitGroup
	once    sync.Once
}

// Options configures a Queue.
type Options struct {
	MaxAttempts int           // attempts per job before giving up (default 3)
	Backoff     time.Duration // base backoff, grows linearly per attempt (default 500ms)
	Size        int           // channel capacity (default 64)
	Timeout     time.Duration // deadline per attempt (default 15s)
}

// NewQueue creates a Queue. logger may be nil, in which case failures
// are silently counted against the job only.
func NewQueue(submit SubmitFunc, logger *log.Logger, opts Options) *Queue {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.Size <= 0 {
		opts.Size = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Queue{
		submit:      submit,
		logger:      logger,
		jobs:        make(chan Job, opts.Size),
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		timeout:     opts.Timeout,
	}
}

// Start launches the worker goroutine. It runs until ctx is cancelled or
// Close is called.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.jobs:
				if !ok {
					return
				}
				q.process(ctx, job)
				q.pending.Done()
			}
		}
	}()
}

// Enqueue adds a job without blocking. When the queue is full the job is
// dropped and logged; the answer still reaches the backend inside the
// final completion payload, so a drop costs durability, not correctness.
func (q *Queue) Enqueue(job Job) bool {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	q.pending.Add(1)
	select {
	case q.jobs <- job:
		return true
	default:
		q.pending.Done()
		q.logFailure(job, 0, fmt.Errorf("queue full"))
		return false
	}
}

// Drain waits until every enqueued job has been processed, or until ctx
// expires. Used at completion time; a deadline keeps a dead backend from
// stalling the terminal screen.
func (q *Queue) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker once in-channel jobs are handed over. Safe to
// call more than once.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.jobs)
	})
}

// process attempts a single job with linear backoff between attempts.
// A failed job never propagates: the session continues locally and the
// answer remains in the local mapping regardless.
func (q *Queue) process(ctx context.Context, job Job) {
	var lastErr error
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		if err := q.attempt(ctx, job); err != nil {
			lastErr = err
			if attempt < q.maxAttempts {
				q.logRetry(job, attempt, err)
				select {
				case <-ctx.Done():
					q.logFailure(job, attempt, ctx.Err())
					return
				case <-time.After(q.backoff * time.Duration(attempt)):
				}
			}
			continue
		}
		return
	}
	q.logFailure(job, q.maxAttempts, lastErr)
}

// attempt runs one submission under the per-attempt deadline, so a hung
// connection cannot park the worker and starve every later job.
func (q *Queue) attempt(ctx context.Context, job Job) error {
	attemptCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	return q.submit(attemptCtx, job)
}

func (q *Queue) logRetry(job Job, attempt int, err error) {
	if q.logger == nil {
		return
	}
	_ = q.logger.Append(log.LogEvent{
		Event:      log.EventPersistRetried,
		SessionID:  job.SessionID,
		UserID:     job.UserID,
		QuestionID: job.QuestionID,
		Attempt:    attempt,
		Error:      err.Error(),
	})
}

func (q *Queue) logFailure(job Job, attempt int, err error) {
	if q.logger == nil {
		return
	}
	_ = q.logger.Append(log.LogEvent{
		Event:      log.EventPersistFailed,
		SessionID:  job.SessionID,
		UserID:     job.UserID,
		QuestionID: job.QuestionID,
		Attempt:    attempt,
		Error:      err.Error(),
	})
}
