package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pathway-dev/pathway/internal/assessment"
	"github.com/pathway-dev/pathway/internal/log"
)

func newTestLogger(t *testing.T) *log.Logger {
	t.Helper()
	logger, err := log.NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("creating logger: %v", err)
	}
	return logger
}

func drain(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
}

func TestQueueDeliversJobs(t *testing.T) {
	var mu sync.Mutex
	var got []Job
	submit := func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, job)
		return nil
	}

	q := NewQueue(submit, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Close()

	q.Enqueue(Job{UserID: "u", QuestionID: "q1", Answer: assessment.Choose("Yes")})
	q.Enqueue(Job{UserID: "u", QuestionID: "q2", Answer: assessment.Slider(4)})
	drain(t, q)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("delivered jobs: %d", len(got))
	}
	if got[0].QuestionID != "q1" || got[1].QuestionID != "q2" {
		t.Errorf("delivery order: %s, %s", got[0].QuestionID, got[1].QuestionID)
	}
	if got[0].EnqueuedAt.IsZero() {
		t.Error("EnqueuedAt should be stamped on enqueue")
	}
}

func TestQueueRetriesThenSucceeds(t *testing.T) {
	logger := newTestLogger(t)

	var mu sync.Mutex
	calls := 0
	submit := func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("temporary outage")
		}
		return nil
	}

	q := NewQueue(submit, logger, Options{MaxAttempts: 3, Backoff: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Close()

	q.Enqueue(Job{SessionID: "s1", QuestionID: "q1", Answer: assessment.Text("x")})
	drain(t, q)

	mu.Lock()
	if calls != 3 {
		t.Errorf("attempts: got %d, want 3", calls)
	}
	mu.Unlock()

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	retries := 0
	for _, ev := range events {
		switch ev.Event {
		case log.EventPersistRetried:
			retries++
		case log.EventPersistFailed:
			t.Errorf("job eventually succeeded but was logged failed: %+v", ev)
		}
	}
	if retries != 2 {
		t.Errorf("retry events: got %d, want 2", retries)
	}
}

func TestQueueLogsFailureAfterMaxAttempts(t *testing.T) {
	logger := newTestLogger(t)

	submit := func(ctx context.Context, job Job) error {
		return errors.New("permanent outage")
	}

	q := NewQueue(submit, logger, Options{MaxAttempts: 2, Backoff: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Close()

	q.Enqueue(Job{SessionID: "s1", QuestionID: "q9", Answer: assessment.Slider(1)})
	drain(t, q)

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	var failed *log.LogEvent
	for i := range events {
		if events[i].Event == log.EventPersistFailed {
			failed = &events[i]
		}
	}
	if failed == nil {
		t.Fatal("no persist_failed event logged")
	}
	if failed.QuestionID != "q9" || failed.Attempt != 2 {
		t.Errorf("failure event: %+v", failed)
	}
	if failed.Error == "" {
		t.Error("failure event should carry the error text")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	logger := newTestLogger(t)

	// No worker started, so the single slot fills and stays full.
	q := NewQueue(func(ctx context.Context, job Job) error { return nil }, logger, Options{Size: 1})

	if !q.Enqueue(Job{QuestionID: "q1"}) {
		t.Fatal("first enqueue should fit")
	}
	if q.Enqueue(Job{QuestionID: "q2"}) {
		t.Fatal("second enqueue should be dropped")
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if len(events) != 1 || events[0].Event != log.EventPersistFailed || events[0].QuestionID != "q2" {
		t.Errorf("drop should log one failure for q2: %+v", events)
	}
}

func TestHungSubmitIsCutByAttemptDeadline(t *testing.T) {
	logger := newTestLogger(t)

	var mu sync.Mutex
	var delivered []string
	submit := func(ctx context.Context, job Job) error {
		if job.QuestionID == "q-hang" {
			// Stalls until the per-attempt deadline cuts it off.
			<-ctx.Done()
			return ctx.Err()
		}
		mu.Lock()
		delivered = append(delivered, job.QuestionID)
		mu.Unlock()
		return nil
	}

	q := NewQueue(submit, logger, Options{
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
		Timeout:     10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Close()

	q.Enqueue(Job{SessionID: "s1", QuestionID: "q-hang"})
	q.Enqueue(Job{SessionID: "s1", QuestionID: "q-next", Answer: assessment.Text("x")})
	drain(t, q)

	mu.Lock()
	if len(delivered) != 1 || delivered[0] != "q-next" {
		t.Errorf("worker should move past the hung job: %v", delivered)
	}
	mu.Unlock()

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	failed := false
	for _, ev := range events {
		if ev.Event == log.EventPersistFailed && ev.QuestionID == "q-hang" {
			failed = true
		}
	}
	if !failed {
		t.Error("hung job should be logged failed after its attempts")
	}
}

func TestDrainTimesOutOnStuckBackend(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	submit := func(ctx context.Context, job Job) error {
		<-block
		return nil
	}

	q := NewQueue(submit, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Close()

	q.Enqueue(Job{QuestionID: "q1"})

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer drainCancel()
	if err := q.Drain(drainCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("drain on stuck backend: got %v, want deadline exceeded", err)
	}
}
