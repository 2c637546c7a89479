// Package notify fans course-update notifications out to subscribers. Lesson
// creation enqueues a task; a background worker does the course and
// subscriber lookups and sends the mail, so requests never wait on SMTP.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/features/subscription"
	"github.com/eduflow/eduflow-server-go/pkg/email"
	"github.com/eduflow/eduflow-server-go/pkg/metrics"
)

// Task identifies a course update to announce. Only the lesson title rides
// along; everything else is loaded at delivery time.
type Task struct {
	CourseID    uuid.UUID
	LessonTitle string
}

// Queue accepts tasks and delivers them from a single background worker.
type Queue struct {
	db     *gorm.DB
	sender email.Sender
	logger *slog.Logger
	tasks  chan Task
	wg     sync.WaitGroup
	once   sync.Once
}

// NewQueue creates a notification queue with the given buffer size.
func NewQueue(db *gorm.DB, sender email.Sender, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{
		db:     db,
		sender: sender,
		logger: logger,
		tasks:  make(chan Task, size),
	}
}

// EnqueueCourseUpdate queues a course-update announcement. Never blocks: if
// the buffer is full the task is dropped and logged.
func (q *Queue) EnqueueCourseUpdate(courseID uuid.UUID, lessonTitle string) {
	select {
	case q.tasks <- Task{CourseID: courseID, LessonTitle: lessonTitle}:
	default:
		metrics.RecordNotification("dropped")
		q.logger.Warn("notification queue full, dropping task",
			slog.String("course_id", courseID.String()),
			slog.String("lesson_title", lessonTitle),
		)
	}
}

// Start launches the worker. It drains until Stop is called or ctx ends.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case task, ok := <-q.tasks:
				if !ok {
					return
				}
				if err := q.Process(ctx, task); err != nil {
					q.logger.Error("notification fan-out failed",
						slog.String("course_id", task.CourseID.String()),
						slog.String("error", err.Error()),
					)
				}
			}
		}
	}()
}

// Stop closes the queue and waits for the worker to drain.
func (q *Queue) Stop() {
	q.once.Do(func() { close(q.tasks) })
	q.wg.Wait()
}

// Process delivers one task: load the course, collect subscriber emails and
// send one message per subscriber. A single bad address never stops the
// rest of the fan-out.
func (q *Queue) Process(ctx context.Context, task Task) error {
	crs, err := course.Get(q.db.WithContext(ctx), task.CourseID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			// The course vanished between enqueue and delivery. Nothing to do.
			q.logger.Info("course gone before notification, nothing to do",
				slog.String("course_id", task.CourseID.String()))
			return nil
		}
		return fmt.Errorf("load course: %w", err)
	}

	recipients, err := subscription.SubscriberEmails(q.db.WithContext(ctx), crs.ID)
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}

	if len(recipients) == 0 {
		q.logger.Info("course has no subscribers, nothing to send",
			slog.String("course_id", crs.ID.String()))
		return nil
	}

	subject, html, text := email.CourseUpdate(crs.Title, task.LessonTitle)

	sent, failed := 0, 0
	for _, recipient := range recipients {
		err := q.sender.Send(ctx, email.Options{
			To:      recipient,
			Subject: subject,
			HTML:    html,
			Text:    text,
		})
		if err != nil {
			failed++
			metrics.RecordNotification("failed")
			q.logger.Warn("notification send failed",
				slog.String("course_id", crs.ID.String()),
				slog.String("recipient", recipient),
				slog.String("error", err.Error()),
			)
			continue
		}
		sent++
		metrics.RecordNotification("sent")
	}

	q.logger.Info("course update fan-out finished",
		slog.String("course_id", crs.ID.String()),
		slog.String("course_title", crs.Title),
		slog.Int("sent", sent),
		slog.Int("failed", failed),
	)
	return nil
}
