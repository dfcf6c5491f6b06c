package email

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"shuttle-store/pkg/logkey"

	"github.com/sethvargo/go-retry"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Emails that keep failing past this many attempts are parked as failed.
const maxAttempts = 5

// Execer lets Enqueue run inside a caller's transaction or on a plain db.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type PendingEmail struct {
	ID        int
	Recipient string
	Subject   string
	Body      string
	Attempts  int
}

type Outbox struct {
	db *sql.DB
}

func NewOutbox(db *sql.DB) (*Outbox, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Outbox{db: db}, nil
}

// Enqueue records a message for later delivery. Called inside the checkout and
// status-update transactions so the email row commits with the order change.
func Enqueue(ctx context.Context, ex Execer, msg Message) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO email_outbox (recipient, subject, body, status, created_at) VALUES ($1, $2, $3, 'pending', NOW())`,
		msg.Recipient, msg.Subject, msg.Body)
	if err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}
	return nil
}

func (o *Outbox) GetPending(ctx context.Context, limit int) ([]PendingEmail, error) {
	rows, err := o.db.QueryContext(ctx,
		`SELECT id, recipient, subject, body, attempts
		 FROM email_outbox
		 WHERE status = 'pending'
		 ORDER BY id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending emails: %w", err)
	}
	defer rows.Close()

	var pending []PendingEmail
	for rows.Next() {
		var p PendingEmail
		if err := rows.Scan(&p.ID, &p.Recipient, &p.Subject, &p.Body, &p.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan pending email: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (o *Outbox) MarkSent(ctx context.Context, id int) error {
	_, err := o.db.ExecContext(ctx,
		`UPDATE email_outbox SET status = 'sent', sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

func (o *Outbox) MarkAttempt(ctx context.Context, id int, attempts int, lastError string) error {
	status := StatusPending
	if attempts >= maxAttempts {
		status = StatusFailed
	}
	_, err := o.db.ExecContext(ctx,
		`UPDATE email_outbox SET status = $1, attempts = $2, last_error = $3 WHERE id = $4`,
		status, attempts, lastError, id)
	if err != nil {
		return fmt.Errorf("failed to record email attempt: %w", err)
	}
	return nil
}

// OutboxStore is the storage surface the worker needs; *Outbox satisfies it.
type OutboxStore interface {
	GetPending(ctx context.Context, limit int) ([]PendingEmail, error)
	MarkSent(ctx context.Context, id int) error
	MarkAttempt(ctx context.Context, id int, attempts int, lastError string) error
}

// Worker drains the outbox on a ticker. Delivery of each message is retried
// with backoff; messages that still fail get their attempt count bumped and
// are picked up again on a later tick.
type Worker struct {
	store  OutboxStore
	sender Sender
	tick   time.Duration
	batch  int
}

func NewWorker(store OutboxStore, sender Sender) *Worker {
	return &Worker{store: store, sender: sender, tick: 5 * time.Second, batch: 50}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.processPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) processPending(ctx context.Context) {
	pending, err := w.store.GetPending(ctx, w.batch)
	if err != nil {
		slog.Error("failed to fetch pending emails", slog.String(logkey.ERROR, err.Error()))
		return
	}

	for _, p := range pending {
		backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if sendErr := w.sender.Send(p.Recipient, p.Subject, p.Body); sendErr != nil {
				return retry.RetryableError(sendErr)
			}
			return nil
		})
		if err != nil {
			slog.Error("failed to send email", slog.Int("OutboxID", p.ID),
				slog.String(logkey.ERROR, err.Error()))
			if markErr := w.store.MarkAttempt(ctx, p.ID, p.Attempts+1, err.Error()); markErr != nil {
				slog.Error("failed to record email attempt", slog.String(logkey.ERROR, markErr.Error()))
			}
			continue
		}

		if err := w.store.MarkSent(ctx, p.ID); err != nil {
			slog.Error("failed to mark email sent", slog.Int("OutboxID", p.ID),
				slog.String(logkey.ERROR, err.Error()))
		}
	}
}
