package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/internal/infrastructure/persistence/memory"
)

// failingLog wraps the in-memory feedback log with fault injection.
type failingLog struct {
	*memory.FeedbackLog

	mu          sync.Mutex
	failAppends int
	appendCalls int
}

func (l *failingLog) Append(ctx context.Context, e *feedback.Entry) error {
	l.mu.Lock()
	l.appendCalls++
	fail := l.failAppends > 0
	if fail {
		l.failAppends--
	}
	l.mu.Unlock()

	if fail {
		return errors.New("disk on fire")
	}
	return l.FeedbackLog.Append(ctx, e)
}

func testEntry(id, learnerID string, rating int, ts time.Time) *feedback.Entry {
	return &feedback.Entry{
		ID:        id,
		LearnerID: learnerID,
		Timestamp: ts,
		Rating:    rating,
	}
}

func TestFeedbackStore_AppendAndList(t *testing.T) {
	s := NewFeedbackStore(memory.NewFeedbackLog(), nil, testConfig(), nil)
	ctx := context.Background()
	now := time.Now().UTC()

	assert.NoError(t, s.Append(ctx, testEntry("1", "alice", 5, now.Add(-time.Hour))))
	assert.NoError(t, s.Append(ctx, testEntry("2", "bob", 3, now)))

	all := s.ListSince(time.Time{})
	assert.Len(t, all, 2)

	recent := s.ListSince(now.Add(-time.Minute))
	assert.Len(t, recent, 1)
	assert.Equal(t, "2", recent[0].ID)

	alice := s.ListByLearner("alice")
	assert.Len(t, alice, 1)
	assert.Equal(t, "1", alice[0].ID)
}

func TestFeedbackStore_ListHandsOutCopies(t *testing.T) {
	s := NewFeedbackStore(memory.NewFeedbackLog(), nil, testConfig(), nil)
	ctx := context.Background()

	assert.NoError(t, s.Append(ctx, testEntry("1", "alice", 5, time.Now().UTC())))

	got := s.ListByLearner("alice")
	got[0].Rating = 1

	again := s.ListByLearner("alice")
	assert.Equal(t, 5, again[0].Rating)
}

func TestFeedbackStore_AppendFailureRetainsEntry(t *testing.T) {
	flog := &failingLog{FeedbackLog: memory.NewFeedbackLog()}
	flog.failAppends = 2
	s := NewFeedbackStore(flog, nil, testConfig(), nil)
	ctx := context.Background()

	err := s.Append(ctx, testEntry("1", "alice", 4, time.Now().UTC()))

	assert.ErrorIs(t, err, shared.ErrStorage)
	assert.Equal(t, 2, flog.appendCalls)
	assert.Equal(t, 1, s.Len(), "entry stays queryable despite the persistence failure")
}

func TestFeedbackStore_AppendRecoveredByRetry(t *testing.T) {
	flog := &failingLog{FeedbackLog: memory.NewFeedbackLog()}
	flog.failAppends = 1
	s := NewFeedbackStore(flog, nil, testConfig(), nil)

	err := s.Append(context.Background(), testEntry("1", "alice", 4, time.Now().UTC()))

	assert.NoError(t, err)
	assert.Equal(t, 2, flog.appendCalls)
}

func TestFeedbackStore_ConcurrentAppendsLoseNothing(t *testing.T) {
	s := NewFeedbackStore(memory.NewFeedbackLog(), nil, testConfig(), nil)
	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Append(ctx, testEntry(fmt.Sprintf("id-%d", i), "alice", 1+i%5, now))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}

func TestFeedbackStore_WarmUpMergesPersistedHistory(t *testing.T) {
	flog := memory.NewFeedbackLog()
	ctx := context.Background()
	now := time.Now().UTC()

	assert.NoError(t, flog.Append(ctx, testEntry("old", "alice", 2, now.Add(-time.Hour))))

	s := NewFeedbackStore(flog, nil, testConfig(), nil)
	assert.NoError(t, s.Append(ctx, testEntry("new", "alice", 5, now)))

	assert.NoError(t, s.WarmUp(ctx))

	// "new" reached the log through Append; WarmUp must not duplicate it.
	all := s.ListSince(time.Time{})
	assert.Len(t, all, 2)
	assert.Equal(t, "old", all[0].ID, "merged history is oldest first")
	assert.Equal(t, "new", all[1].ID)
}
