package prediction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glucotrack/glucotrack/internal/domain/notification"
	"github.com/glucotrack/glucotrack/internal/platform/mail"
)

// Task is the post-persist work for one submission: create the in-app
// notification and send the risk email.
type Task struct {
	UserID            uuid.UUID
	RecordID          uuid.UUID
	Email             string
	Name              string
	RiskLevel         string
	Precentage        float64
	PredictedPositive bool
}

// Dispatcher delivers tasks on a worker goroutine with per-task retry, so a
// slow or failing mail server never delays or fails the client response.
type Dispatcher struct {
	tasks         chan Task
	notifications notification.Repository
	mailer        mail.Sender
	logger        zerolog.Logger

	maxAttempts int
	backoff     time.Duration

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewDispatcher(notifications notification.Repository, mailer mail.Sender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		tasks:         make(chan Task, 64),
		notifications: notifications,
		mailer:        mailer,
		logger:        logger,
		maxAttempts:   3,
		backoff:       500 * time.Millisecond,
	}
}

// Start launches the worker goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for task := range d.tasks {
			d.process(task)
		}
	}()
}

// Enqueue hands a task to the worker. Blocks only if the buffer is full.
func (d *Dispatcher) Enqueue(t Task) {
	d.tasks <- t
}

// Close stops accepting tasks and drains the queue.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.tasks)
	})
	d.wg.Wait()
}

func (d *Dispatcher) process(t Task) {
	var notified, mailed bool
	var lastErr error

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(d.backoff * time.Duration(attempt-1))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		lastErr = d.attempt(ctx, t, &notified, &mailed)
		cancel()

		if lastErr == nil {
			return
		}
		d.logger.Warn().Err(lastErr).
			Str("record_id", t.RecordID.String()).
			Int("attempt", attempt).
			Msg("notification delivery failed")
	}

	d.logger.Error().Err(lastErr).
		Str("record_id", t.RecordID.String()).
		Str("user_id", t.UserID.String()).
		Msg("notification delivery abandoned")
}

func (d *Dispatcher) attempt(ctx context.Context, t Task, notified, mailed *bool) error {
	if !*notified {
		n := &notification.Notification{
			UserID:   t.UserID,
			RecordID: t.RecordID,
			Message:  fmt.Sprintf("Your diabetes risk assessment is ready: %s risk (%.0f%%).", t.RiskLevel, t.Precentage),
		}
		if err := d.notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		*notified = true
	}

	if !*mailed {
		if err := d.mailer.SendRiskNotification(ctx, t.Email, t.Name, t.RiskLevel, t.PredictedPositive); err != nil {
			return fmt.Errorf("send risk email: %w", err)
		}
		*mailed = true
	}
	return nil
}
