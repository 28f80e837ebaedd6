package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/internal/infrastructure/persistence/memory"
)

func testConfig() Config {
	return Config{
		MaxLogSize:  1000,
		SaveTimeout: time.Second,
		RetryDelay:  time.Millisecond,
	}
}

// failingRepo wraps the in-memory repository with fault injection.
type failingRepo struct {
	*memory.LearnerRepository

	mu        sync.Mutex
	failSaves int
	saveCalls int
	loadErr   error
}

func newFailingRepo() *failingRepo {
	return &failingRepo{LearnerRepository: memory.NewLearnerRepository()}
}

func (r *failingRepo) Save(ctx context.Context, rec *learner.Record) error {
	r.mu.Lock()
	r.saveCalls++
	fail := r.failSaves > 0
	if fail {
		r.failSaves--
	}
	r.mu.Unlock()

	if fail {
		return errors.New("disk on fire")
	}
	return r.LearnerRepository.Save(ctx, rec)
}

func (r *failingRepo) Load(ctx context.Context, id string) (*learner.Record, error) {
	r.mu.Lock()
	loadErr := r.loadErr
	r.mu.Unlock()
	if loadErr != nil {
		return nil, loadErr
	}
	return r.LearnerRepository.Load(ctx, id)
}

func TestStateStore_ApplyCreatesLazily(t *testing.T) {
	repo := memory.NewLearnerRepository()
	s := NewStateStore(repo, nil, testConfig(), nil)

	rec, err := s.Apply(context.Background(), "alice", func(rec *learner.Record) error {
		rec.AddSessionTime(time.Minute, time.Now().UTC())
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "alice", rec.ID)
	assert.Equal(t, time.Minute, rec.TimeSpent)
	assert.Equal(t, 1, repo.Len())
}

func TestStateStore_SnapshotNeverPersists(t *testing.T) {
	repo := memory.NewLearnerRepository()
	s := NewStateStore(repo, nil, testConfig(), nil)

	rec, err := s.Snapshot(context.Background(), "never-seen")

	assert.NoError(t, err)
	assert.Equal(t, "never-seen", rec.ID)
	assert.Empty(t, rec.Topics)
	assert.Zero(t, rec.QuestionsAsked)
	assert.Equal(t, 0, repo.Len(), "a read must not create a persisted entry")
}

func TestStateStore_SnapshotIsACopy(t *testing.T) {
	s := NewStateStore(memory.NewLearnerRepository(), nil, testConfig(), nil)
	ctx := context.Background()

	_, err := s.Apply(ctx, "alice", func(rec *learner.Record) error {
		rec.CompleteLab("lab-1", time.Now().UTC())
		return nil
	})
	assert.NoError(t, err)

	snap, err := s.Snapshot(ctx, "alice")
	assert.NoError(t, err)
	snap.LabsCompleted["lab-2"] = true

	again, err := s.Snapshot(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, again.LabsCompleted, 1)
}

func TestStateStore_MutationErrorChangesNothing(t *testing.T) {
	repo := newFailingRepo()
	s := NewStateStore(repo, nil, testConfig(), nil)
	ctx := context.Background()

	_, err := s.Apply(ctx, "alice", func(rec *learner.Record) error {
		rec.AddSessionTime(time.Hour, time.Now().UTC())
		return nil
	})
	assert.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Apply(ctx, "alice", func(rec *learner.Record) error {
		rec.AddSessionTime(time.Hour, time.Now().UTC())
		return boom
	})
	assert.ErrorIs(t, err, boom)

	snap, err := s.Snapshot(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, time.Hour, snap.TimeSpent)
}

func TestStateStore_ConcurrentAppliesLoseNothing(t *testing.T) {
	for _, n := range []int{1, 10, 100} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			s := NewStateStore(memory.NewLearnerRepository(), nil, testConfig(), nil)
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := s.Apply(ctx, "alice", func(rec *learner.Record) error {
						rec.AppendInteraction(learner.Interaction{
							Timestamp: time.Now().UTC(),
							TopicID:   fmt.Sprintf("topic-%d", i),
						}, 1000)
						return nil
					})
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			snap, err := s.Snapshot(ctx, "alice")
			assert.NoError(t, err)
			assert.Equal(t, n, snap.QuestionsAsked)
		})
	}
}

func TestStateStore_DifferentLearnersDoNotInterfere(t *testing.T) {
	s := NewStateStore(memory.NewLearnerRepository(), nil, testConfig(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("learner-%d", i%4)
			_, err := s.Apply(ctx, id, func(rec *learner.Record) error {
				rec.AppendInteraction(learner.Interaction{TopicID: "ec2"}, 100)
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		snap, err := s.Snapshot(ctx, fmt.Sprintf("learner-%d", i))
		assert.NoError(t, err)
		assert.Equal(t, 5, snap.QuestionsAsked)
	}
}

func TestStateStore_SaveFailureRetriesOnceThenSurfaces(t *testing.T) {
	repo := newFailingRepo()
	repo.failSaves = 2 // first attempt and the automatic retry
	s := NewStateStore(repo, nil, testConfig(), nil)
	ctx := context.Background()

	rec, err := s.Apply(ctx, "alice", func(rec *learner.Record) error {
		rec.AddSessionTime(time.Minute, time.Now().UTC())
		return nil
	})

	assert.ErrorIs(t, err, shared.ErrStorage)
	assert.NotNil(t, rec, "the committed record accompanies the storage error")
	assert.Equal(t, 2, repo.saveCalls)

	// In-memory state stands despite the persistence failure.
	snap, snapErr := s.Snapshot(ctx, "alice")
	assert.NoError(t, snapErr)
	assert.Equal(t, time.Minute, snap.TimeSpent)
}

func TestStateStore_SaveFailureRecoveredByRetry(t *testing.T) {
	repo := newFailingRepo()
	repo.failSaves = 1
	s := NewStateStore(repo, nil, testConfig(), nil)

	_, err := s.Apply(context.Background(), "alice", func(rec *learner.Record) error {
		rec.AddSessionTime(time.Minute, time.Now().UTC())
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, repo.saveCalls)
	assert.Equal(t, 1, repo.LearnerRepository.Len())
}

func TestStateStore_CorruptRecordTreatedAsAbsence(t *testing.T) {
	repo := newFailingRepo()
	repo.loadErr = shared.WrapError("test", "Load", shared.ErrCorruptRecord, "bad json", errors.New("unexpected end"))
	s := NewStateStore(repo, nil, testConfig(), nil)

	snap, err := s.Snapshot(context.Background(), "alice")

	assert.NoError(t, err)
	assert.Equal(t, "alice", snap.ID)
	assert.Zero(t, snap.QuestionsAsked)
}

func TestStateStore_LoadErrorSurfaces(t *testing.T) {
	repo := newFailingRepo()
	repo.loadErr = errors.New("connection refused")
	s := NewStateStore(repo, nil, testConfig(), nil)

	_, err := s.Snapshot(context.Background(), "alice")
	assert.ErrorIs(t, err, shared.ErrStorage)
}

func TestStateStore_WarmUpLoadsAllRecords(t *testing.T) {
	repo := memory.NewLearnerRepository()
	ctx := context.Background()

	for _, id := range []string{"alice", "bob", "carol"} {
		rec := learner.NewRecord(id)
		rec.AppendInteraction(learner.Interaction{TopicID: "ec2"}, 100)
		assert.NoError(t, repo.Save(ctx, rec))
	}

	s := NewStateStore(repo, nil, testConfig(), nil)
	assert.Equal(t, 0, s.Len())

	assert.NoError(t, s.WarmUp(ctx))
	assert.Equal(t, 3, s.Len())
}

func TestStateStore_ForEachSeesPointInTimeCopies(t *testing.T) {
	s := NewStateStore(memory.NewLearnerRepository(), nil, testConfig(), nil)
	ctx := context.Background()

	for _, id := range []string{"alice", "bob"} {
		_, err := s.Apply(ctx, id, func(rec *learner.Record) error {
			rec.CompleteLab("lab-1", time.Now().UTC())
			return nil
		})
		assert.NoError(t, err)
	}

	var seen int
	s.ForEach(func(rec *learner.Record) {
		seen++
		rec.LabsCompleted["mutating-the-copy"] = true
	})
	assert.Equal(t, 2, seen)

	snap, err := s.Snapshot(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, snap.LabsCompleted, 1)
}
