package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tutor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestLearnerRepository_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	repo := st.LearnerRepository()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	rec := learner.NewRecord("alice")
	rec.ApplyEngagement("ec2", 0.3, 1.0, now)
	rec.CompleteLab("lab-1", now)
	rec.AppendInteraction(learner.Interaction{Timestamp: now, TopicID: "ec2", QuestionText: "q"}, 100)
	rec.AddSessionTime(10*time.Minute, now)

	require.NoError(t, repo.Save(ctx, rec))

	loaded, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, rec.QuestionsAsked, loaded.QuestionsAsked)
	assert.Equal(t, rec.TimeSpent, loaded.TimeSpent)
	assert.InDelta(t, rec.Topics["ec2"].Value, loaded.Topics["ec2"].Value, 1e-9)
	assert.True(t, loaded.LabsCompleted["lab-1"])
	assert.Len(t, loaded.InteractionLog, 1)
}

func TestLearnerRepository_AbsentIsNilNil(t *testing.T) {
	st := openTestStore(t)

	loaded, err := st.LearnerRepository().Load(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestLearnerRepository_SaveIsUpsert(t *testing.T) {
	st := openTestStore(t)
	repo := st.LearnerRepository()
	ctx := context.Background()

	rec := learner.NewRecord("alice")
	require.NoError(t, repo.Save(ctx, rec))

	rec.QuestionsAsked = 7
	require.NoError(t, repo.Save(ctx, rec))

	loaded, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.QuestionsAsked)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids)
}

func TestLearnerRepository_CorruptRecordReported(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.DB().ExecContext(ctx,
		`INSERT INTO learner_records (id, record, updated_at) VALUES ('alice', 'not json', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = st.LearnerRepository().Load(ctx, "alice")
	assert.ErrorIs(t, err, shared.ErrCorruptRecord)
}

func TestFeedbackLog_AppendAndWindows(t *testing.T) {
	st := openTestStore(t)
	flog := st.FeedbackLog()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	entries := []*feedback.Entry{
		{ID: "1", LearnerID: "alice", Timestamp: now.Add(-48 * time.Hour), Rating: 2, Comment: "unclear"},
		{ID: "2", LearnerID: "bob", Timestamp: now.Add(-time.Hour), Rating: 4, Category: "lab"},
		{ID: "3", LearnerID: "alice", Timestamp: now, Rating: 5},
	}
	for _, e := range entries {
		require.NoError(t, flog.Append(ctx, e))
	}

	all, err := flog.ListSince(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "1", all[0].ID, "oldest first")
	assert.Equal(t, "unclear", all[0].Comment)

	windowed, err := flog.ListSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, windowed, 2)

	alice, err := flog.ListByLearner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, []string{"1", "3"}, []string{alice[0].ID, alice[1].ID})
}
