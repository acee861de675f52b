package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session represents a login session token
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUser inserts a new user. Emails are stored lowercased.
func (s *Store) CreateUser(user *User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err := s.db.Exec(`
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.Name, user.PasswordHash, formatTime(user.CreatedAt))

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateEmail
	}
	return err
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(id string) (*User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = ?
	`, id))
}

// GetUserByEmail retrieves a user by email (case-insensitive)
func (s *Store) GetUserByEmail(email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var user User
	var createdAt string

	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.CreatedAt = parseTime(createdAt)

	return &user, nil
}

// CreateSession inserts a new session token
func (s *Store) CreateSession(sess *Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, sess.Token, sess.UserID, formatTime(sess.CreatedAt), formatTime(sess.ExpiresAt))

	return err
}

// GetSession retrieves a live session by token. Expired sessions are
// deleted on lookup and reported as not found.
func (s *Store) GetSession(token string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT token, user_id, created_at, expires_at
		FROM sessions WHERE token = ?
	`, token)

	var sess Session
	var createdAt, expiresAt string

	err := row.Scan(&sess.Token, &sess.UserID, &createdAt, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sess.CreatedAt = parseTime(createdAt)
	sess.ExpiresAt = parseTime(expiresAt)

	if time.Now().After(sess.ExpiresAt) {
		if err := s.DeleteSession(token); err != nil {
			return nil, fmt.Errorf("failed to purge expired session: %w", err)
		}
		return nil, ErrNotFound
	}

	return &sess, nil
}

// DeleteSession removes a session token
func (s *Store) DeleteSession(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}
