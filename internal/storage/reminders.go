package storage

import (
	"database/sql"
	"time"
)

// Reminder is a scheduled notification tied to a task
type Reminder struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	UserID    string     `json:"user_id"`
	RemindAt  time.Time  `json:"remind_at"`
	Sent      bool       `json:"sent"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DueReminder is a reminder joined with the task and recipient needed
// to send the notification email.
type DueReminder struct {
	Reminder
	TaskTitle string     `json:"task_title"`
	TaskDue   *time.Time `json:"task_due,omitempty"`
	Email     string     `json:"email"`
	UserName  string     `json:"user_name"`
}

// CreateReminder schedules a reminder for a task
func (s *Store) CreateReminder(r *Reminder) error {
	_, err := s.db.Exec(`
		INSERT INTO reminders (id, task_id, user_id, remind_at, sent, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, r.ID, r.TaskID, r.UserID, formatTime(r.RemindAt), formatTime(r.CreatedAt))

	return err
}

// ListReminders returns a task's reminders, soonest first
func (s *Store) ListReminders(taskID string) ([]Reminder, error) {
	rows, err := s.db.Query(`
		SELECT id, task_id, user_id, remind_at, sent, sent_at, created_at
		FROM reminders
		WHERE task_id = ?
		ORDER BY remind_at ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}

	return reminders, rows.Err()
}

// GetReminder retrieves a reminder by ID
func (s *Store) GetReminder(id string) (*Reminder, error) {
	row := s.db.QueryRow(`
		SELECT id, task_id, user_id, remind_at, sent, sent_at, created_at
		FROM reminders WHERE id = ?
	`, id)

	r, err := scanReminder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// DeleteReminder removes a reminder
func (s *Store) DeleteReminder(id string) error {
	res, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DueReminders returns up to limit unsent reminders due at or before now,
// joined with task title and recipient email.
func (s *Store) DueReminders(now time.Time, limit int) ([]DueReminder, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT r.id, r.task_id, r.user_id, r.remind_at, r.sent, r.sent_at, r.created_at,
		       t.title, t.due_date, u.email, u.name
		FROM reminders r
		JOIN tasks t ON t.id = r.task_id
		JOIN users u ON u.id = r.user_id
		WHERE r.sent = 0 AND r.remind_at <= ?
		ORDER BY r.remind_at ASC
		LIMIT ?
	`, formatTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []DueReminder
	for rows.Next() {
		var d DueReminder
		var remindAt, createdAt string
		var sent int
		var sentAt, taskDue sql.NullString

		err := rows.Scan(
			&d.ID, &d.TaskID, &d.UserID, &remindAt, &sent, &sentAt, &createdAt,
			&d.TaskTitle, &taskDue, &d.Email, &d.UserName,
		)
		if err != nil {
			return nil, err
		}

		d.RemindAt = parseTime(remindAt)
		d.Sent = sent != 0
		d.SentAt = scanNullTime(sentAt)
		d.CreatedAt = parseTime(createdAt)
		d.TaskDue = scanNullTime(taskDue)

		due = append(due, d)
	}

	return due, rows.Err()
}

// MarkReminderSent records a successful send
func (s *Store) MarkReminderSent(id string, sentAt time.Time) error {
	_, err := s.db.Exec(`
		UPDATE reminders SET sent = 1, sent_at = ? WHERE id = ?
	`, formatTime(sentAt), id)

	return err
}

func scanReminder(row rowScanner) (*Reminder, error) {
	var r Reminder
	var remindAt, createdAt string
	var sent int
	var sentAt sql.NullString

	err := row.Scan(&r.ID, &r.TaskID, &r.UserID, &remindAt, &sent, &sentAt, &createdAt)
	if err != nil {
		return nil, err
	}

	r.RemindAt = parseTime(remindAt)
	r.Sent = sent != 0
	r.SentAt = scanNullTime(sentAt)
	r.CreatedAt = parseTime(createdAt)

	return &r, nil
}
