// Package reminder sweeps the store for due reminders and delivers
// them as email.
package reminder

import (
	"context"
	"fmt"
	"html"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/mail"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

// Sender delivers a single email
type Sender interface {
	Send(ctx context.Context, msg mail.Message) (string, error)
}

// Dispatcher periodically delivers due reminders. A failed send is
// logged and left unsent; the next sweep picks it up again.
type Dispatcher struct {
	store       *storage.Store
	sender      Sender
	interval    time.Duration
	batchSize   int
	concurrency int

	sweepLock sync.Mutex
}

// New creates a dispatcher
func New(store *storage.Store, sender Sender, interval time.Duration, batchSize, concurrency int) *Dispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Dispatcher{
		store:       store,
		sender:      sender,
		interval:    interval,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// Run sweeps on the configured interval until the context is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent, err := d.Sweep(ctx)
			if err != nil {
				log.Printf("reminder sweep failed: %v", err)
			} else if sent > 0 {
				log.Printf("reminder sweep delivered %d reminder(s)", sent)
			}
		}
	}
}

// Sweep delivers all currently due reminders and returns how many were
// marked sent. Overlapping sweeps are serialized.
func (d *Dispatcher) Sweep(ctx context.Context) (int, error) {
	d.sweepLock.Lock()
	defer d.sweepLock.Unlock()

	due, err := d.store.DueReminders(time.Now(), d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load due reminders: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	var mu sync.Mutex
	sent := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, r := range due {
		r := r
		g.Go(func() error {
			id, err := d.sender.Send(ctx, renderMessage(r))
			if err != nil {
				// Left unsent; next sweep retries naturally
				log.Printf("reminder %s: send failed: %v", r.ID, err)
				return nil
			}

			if err := d.store.MarkReminderSent(r.ID, time.Now()); err != nil {
				log.Printf("reminder %s: sent as %s but not marked: %v", r.ID, id, err)
				return nil
			}

			mu.Lock()
			sent++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return sent, err
	}
	return sent, nil
}

// renderMessage builds the reminder email for a due reminder
func renderMessage(r storage.DueReminder) mail.Message {
	subject := fmt.Sprintf("Reminder: %s", r.TaskTitle)

	dueLine := "This task has no due date."
	if r.TaskDue != nil {
		dueLine = fmt.Sprintf("It is due %s.", r.TaskDue.Format("Mon, Jan 2 2006 at 15:04"))
	}

	text := fmt.Sprintf("Hi %s,\n\nThis is your reminder for %q. %s\n\n— TuduAI",
		r.UserName, r.TaskTitle, dueLine)

	// Titles and names come from workspace members; escape before they
	// reach the recipient's HTML renderer.
	body := fmt.Sprintf("<p>Hi %s,</p><p>This is your reminder for <strong>%s</strong>. %s</p><p>— TuduAI</p>",
		html.EscapeString(r.UserName), html.EscapeString(r.TaskTitle), dueLine)

	return mail.Message{
		To:      r.Email,
		Subject: subject,
		HTML:    body,
		Text:    text,
	}
}
