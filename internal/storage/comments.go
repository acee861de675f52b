package storage

import (
	"database/sql"
	"time"
)

// Comment is a note attached to a task
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateComment attaches a comment to a task
func (s *Store) CreateComment(comment *Comment) error {
	_, err := s.db.Exec(`
		INSERT INTO comments (id, task_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, comment.ID, comment.TaskID, comment.UserID, comment.Content,
		formatTime(comment.CreatedAt))

	return err
}

// ListComments returns a task's comments, oldest first
func (s *Store) ListComments(taskID string) ([]Comment, error) {
	rows, err := s.db.Query(`
		SELECT id, task_id, user_id, content, created_at
		FROM comments
		WHERE task_id = ?
		ORDER BY created_at ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var createdAt string

		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)

		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// GetComment retrieves a comment by ID
func (s *Store) GetComment(id string) (*Comment, error) {
	row := s.db.QueryRow(`
		SELECT id, task_id, user_id, content, created_at
		FROM comments WHERE id = ?
	`, id)

	var c Comment
	var createdAt string

	err := row.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)

	return &c, nil
}

// DeleteComment removes a comment
func (s *Store) DeleteComment(id string) error {
	res, err := s.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
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
