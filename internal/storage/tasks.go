package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Board columns. Tasks are grouped by due date on creation and moved
// between columns by drag-and-drop afterwards.
const (
	ColumnOverdue  = "overdue"
	ColumnToday    = "today"
	ColumnUpcoming = "upcoming"
	ColumnSomeday  = "someday"
	ColumnDone     = "done"
)

// Columns lists the board columns in display order
var Columns = []string{ColumnOverdue, ColumnToday, ColumnUpcoming, ColumnSomeday, ColumnDone}

// Task is a titled unit of work with due date, urgency score,
// completion flag and comments.
type Task struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Urgency     float64    `json:"urgency"`
	Column      string     `json:"column"`
	Position    int        `json:"position"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ColumnForDueDate returns the due-date column a task belongs in,
// relative to now.
func ColumnForDueDate(due *time.Time, now time.Time) string {
	if due == nil {
		return ColumnSomeday
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case dueDay.Before(today):
		return ColumnOverdue
	case dueDay.Equal(today):
		return ColumnToday
	default:
		return ColumnUpcoming
	}
}

// ClampUrgency bounds an urgency score to the valid [1, 5] range
func ClampUrgency(u float64) float64 {
	if u < 1 {
		return 1
	}
	if u > 5 {
		return 5
	}
	return u
}

// CreateTask inserts a task at the end of its column. An empty Column is
// derived from the due date.
func (s *Store) CreateTask(task *Task) error {
	if task.Column == "" {
		task.Column = ColumnForDueDate(task.DueDate, time.Now())
	}
	task.Urgency = ClampUrgency(task.Urgency)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM tasks
		WHERE workspace_id = ? AND column_name = ?
	`, task.WorkspaceID, task.Column).Scan(&task.Position)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO tasks (id, workspace_id, user_id, title, notes, due_date,
		                   urgency, column_name, position, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.WorkspaceID, task.UserID, task.Title, task.Notes,
		nullTime(task.DueDate), task.Urgency, task.Column, task.Position,
		boolToInt(task.Completed), formatTime(task.CreatedAt), formatTime(task.UpdatedAt))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetTask retrieves a task by ID
func (s *Store) GetTask(id string) (*Task, error) {
	row := s.db.QueryRow(`
		SELECT id, workspace_id, user_id, title, notes, due_date, urgency,
		       column_name, position, completed, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListTasks returns all tasks in a workspace in board order
func (s *Store) ListTasks(workspaceID string) ([]Task, error) {
	rows, err := s.db.Query(`
		SELECT id, workspace_id, user_id, title, notes, due_date, urgency,
		       column_name, position, completed, created_at, updated_at
		FROM tasks
		WHERE workspace_id = ?
		ORDER BY column_name, position ASC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// UpdateTask updates title, notes, due date and urgency
func (s *Store) UpdateTask(task *Task) error {
	task.Urgency = ClampUrgency(task.Urgency)

	res, err := s.db.Exec(`
		UPDATE tasks SET title = ?, notes = ?, due_date = ?, urgency = ?, updated_at = ?
		WHERE id = ?
	`, task.Title, task.Notes, nullTime(task.DueDate), task.Urgency,
		formatTime(time.Now()), task.ID)
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

// MoveTask places a task at the given position in the given column,
// shifting later tasks down. Last write wins; there is no version check.
func (s *Store) MoveTask(id, column string, position int) error {
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if position < 0 {
		position = 0
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Close the gap in the source column
	_, err = tx.Exec(`
		UPDATE tasks SET position = position - 1
		WHERE workspace_id = ? AND column_name = ? AND position > ?
	`, task.WorkspaceID, task.Column, task.Position)
	if err != nil {
		return err
	}

	// Open a slot in the destination column
	_, err = tx.Exec(`
		UPDATE tasks SET position = position + 1
		WHERE workspace_id = ? AND column_name = ? AND position >= ? AND id != ?
	`, task.WorkspaceID, column, position, id)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE tasks SET column_name = ?, position = ?, updated_at = ?
		WHERE id = ?
	`, column, position, formatTime(time.Now()), id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// SetTaskCompleted toggles the completion flag. Completing moves the task
// to the done column; un-completing returns it to its due-date column.
func (s *Store) SetTaskCompleted(id string, completed bool) (*Task, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task.Completed == completed {
		return task, nil
	}

	column := ColumnDone
	if !completed {
		column = ColumnForDueDate(task.DueDate, time.Now())
	}

	var position int
	err = s.db.QueryRow(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM tasks
		WHERE workspace_id = ? AND column_name = ?
	`, task.WorkspaceID, column).Scan(&position)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`
		UPDATE tasks SET completed = ?, column_name = ?, position = ?, updated_at = ?
		WHERE id = ?
	`, boolToInt(completed), column, position, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update completion: %w", err)
	}

	return s.GetTask(id)
}

// DeleteTask removes a task and, via foreign keys, its comments and reminders
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*Task, error) {
	var task Task
	var dueDate sql.NullString
	var completed int
	var createdAt, updatedAt string

	err := row.Scan(
		&task.ID, &task.WorkspaceID, &task.UserID, &task.Title, &task.Notes,
		&dueDate, &task.Urgency, &task.Column, &task.Position, &completed,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.DueDate = scanNullTime(dueDate)
	task.Completed = completed != 0
	task.CreatedAt = parseTime(createdAt)
	task.UpdatedAt = parseTime(updatedAt)

	return &task, nil
}
