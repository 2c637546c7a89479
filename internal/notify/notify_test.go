package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/features/subscription"
	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/notify"
	"github.com/eduflow/eduflow-server-go/internal/testutil"
	"github.com/eduflow/eduflow-server-go/pkg/email"
	"github.com/eduflow/eduflow-server-go/pkg/logger"
)

// recordingSender captures sends and can fail selected recipients.
type recordingSender struct {
	mu      sync.Mutex
	sent    []email.Options
	failFor map[string]error
}

func (s *recordingSender) Send(_ context.Context, opts email.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[opts.To]; ok {
		return err
	}
	s.sent = append(s.sent, opts)
	return nil
}

func (s *recordingSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, opts := range s.sent {
		out = append(out, opts.To)
	}
	return out
}

func seed(t *testing.T, db *gorm.DB, subscribers ...string) course.Course {
	t.Helper()
	owner, err := user.Create(db, user.CreateInput{Email: "owner@example.com", Password: "password123"})
	require.NoError(t, err)
	crs, err := course.Create(db, course.CreateInput{Title: "Distributed systems", OwnerID: owner.ID})
	require.NoError(t, err)
	for _, address := range subscribers {
		sub, err := user.Create(db, user.CreateInput{Email: address, Password: "password123"})
		require.NoError(t, err)
		_, _, err = subscription.Subscribe(db, sub.ID, crs.ID)
		require.NoError(t, err)
	}
	return crs
}

func TestProcessSendsToEverySubscriber(t *testing.T) {
	db := testutil.NewTestDB(t)
	crs := seed(t, db, "one@example.com", "two@example.com")

	sender := &recordingSender{}
	queue := notify.NewQueue(db, sender, 4, logger.Discard())

	err := queue.Process(context.Background(), notify.Task{
		CourseID:    crs.ID,
		LessonTitle: "Consensus",
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"one@example.com", "two@example.com"}, sender.recipients())
	require.NotEmpty(t, sender.sent)
	assert.Contains(t, sender.sent[0].Subject, "Distributed systems")
	assert.Contains(t, sender.sent[0].HTML, "Consensus")
}

func TestProcessIsolatesPerRecipientFailures(t *testing.T) {
	db := testutil.NewTestDB(t)
	crs := seed(t, db, "ok@example.com", "bad@example.com", "also-ok@example.com")

	sender := &recordingSender{failFor: map[string]error{
		"bad@example.com": errors.New("mailbox unavailable"),
	}}
	queue := notify.NewQueue(db, sender, 4, logger.Discard())

	err := queue.Process(context.Background(), notify.Task{CourseID: crs.ID, LessonTitle: "Lesson"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ok@example.com", "also-ok@example.com"}, sender.recipients())
}

func TestProcessIgnoresDeletedCourse(t *testing.T) {
	db := testutil.NewTestDB(t)

	sender := &recordingSender{}
	queue := notify.NewQueue(db, sender, 4, logger.Discard())

	err := queue.Process(context.Background(), notify.Task{
		CourseID:    uuid.New(),
		LessonTitle: "Lesson",
	})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestProcessWithNoSubscribersSendsNothing(t *testing.T) {
	db := testutil.NewTestDB(t)
	crs := seed(t, db)

	sender := &recordingSender{}
	queue := notify.NewQueue(db, sender, 4, logger.Discard())

	err := queue.Process(context.Background(), notify.Task{CourseID: crs.ID, LessonTitle: "Lesson"})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestQueueDeliversEnqueuedTasks(t *testing.T) {
	db := testutil.NewTestDB(t)
	crs := seed(t, db, "sub@example.com")

	sender := &recordingSender{}
	queue := notify.NewQueue(db, sender, 4, logger.Discard())
	queue.Start(context.Background())

	queue.EnqueueCourseUpdate(crs.ID, "New lesson")
	queue.Stop()

	assert.Equal(t, []string{"sub@example.com"}, sender.recipients())
}
