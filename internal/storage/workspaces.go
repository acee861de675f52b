package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// DefaultWorkspaceName is the name given to the workspace created for
// every new user.
const DefaultWorkspaceName = "Home"

// Workspace is a named grouping of tasks owned by a user, optionally
// shared with other members.
type Workspace struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member represents a user's membership in a shared workspace
type Member struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	AddedAt     time.Time `json:"added_at"`
}

// CreateWorkspace inserts a new workspace and records the owner as a member
func (s *Store) CreateWorkspace(ws *Workspace) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO workspaces (id, user_id, name, icon, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ws.ID, ws.UserID, ws.Name, ws.Icon, boolToInt(ws.IsDefault),
		formatTime(ws.CreatedAt), formatTime(ws.UpdatedAt))
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO workspace_members (workspace_id, user_id, role, added_at)
		VALUES (?, ?, 'owner', ?)
	`, ws.ID, ws.UserID, formatTime(ws.CreatedAt))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetWorkspace retrieves a workspace by ID
func (s *Store) GetWorkspace(id string) (*Workspace, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, name, icon, is_default, created_at, updated_at
		FROM workspaces WHERE id = ?
	`, id)

	return scanWorkspace(row)
}

// ListWorkspaces returns all workspaces the user owns or is a member of,
// oldest first
func (s *Store) ListWorkspaces(userID string) ([]Workspace, error) {
	rows, err := s.db.Query(`
		SELECT w.id, w.user_id, w.name, w.icon, w.is_default, w.created_at, w.updated_at
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = ?
		ORDER BY w.created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []Workspace
	for rows.Next() {
		var ws Workspace
		var isDefault int
		var createdAt, updatedAt string

		err := rows.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.Icon, &isDefault, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		ws.IsDefault = isDefault != 0
		ws.CreatedAt = parseTime(createdAt)
		ws.UpdatedAt = parseTime(updatedAt)

		workspaces = append(workspaces, ws)
	}

	return workspaces, rows.Err()
}

// UpdateWorkspace updates name and icon
func (s *Store) UpdateWorkspace(ws *Workspace) error {
	res, err := s.db.Exec(`
		UPDATE workspaces SET name = ?, icon = ?, updated_at = ?
		WHERE id = ?
	`, ws.Name, ws.Icon, formatTime(time.Now()), ws.ID)
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

// DeleteWorkspace removes a workspace and, via foreign keys, its tasks,
// comments and reminders. The default workspace is refused.
func (s *Store) DeleteWorkspace(id string) error {
	ws, err := s.GetWorkspace(id)
	if err != nil {
		return err
	}
	if ws.IsDefault {
		return ErrDefaultWorkspace
	}

	_, err = s.db.Exec(`DELETE FROM workspaces WHERE id = ?`, id)
	return err
}

// EnsureDefaultWorkspace guarantees the user has exactly one default
// workspace: the oldest existing default wins, newer defaults are demoted,
// and a "Home" workspace is created when none exists. Returns the default.
func (s *Store) EnsureDefaultWorkspace(userID string) (*Workspace, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, icon, is_default, created_at, updated_at
		FROM workspaces
		WHERE user_id = ? AND is_default = 1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defaults []Workspace
	for rows.Next() {
		var ws Workspace
		var isDefault int
		var createdAt, updatedAt string

		err := rows.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.Icon, &isDefault, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		ws.IsDefault = true
		ws.CreatedAt = parseTime(createdAt)
		ws.UpdatedAt = parseTime(updatedAt)
		defaults = append(defaults, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(defaults) == 0 {
		now := time.Now()
		ws := &Workspace{
			ID:        GenerateID(),
			UserID:    userID,
			Name:      DefaultWorkspaceName,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateWorkspace(ws); err != nil {
			return nil, fmt.Errorf("failed to create default workspace: %w", err)
		}
		return ws, nil
	}

	// Demote duplicate defaults, keeping the oldest
	for _, dup := range defaults[1:] {
		if _, err := s.db.Exec(`UPDATE workspaces SET is_default = 0 WHERE id = ?`, dup.ID); err != nil {
			return nil, fmt.Errorf("failed to demote duplicate default workspace: %w", err)
		}
	}

	return &defaults[0], nil
}

// AddMember grants a user access to a workspace
func (s *Store) AddMember(workspaceID, userID, role string) error {
	if role == "" {
		role = "member"
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO workspace_members (workspace_id, user_id, role, added_at)
		VALUES (?, ?, ?, ?)
	`, workspaceID, userID, role, formatTime(time.Now()))

	return err
}

// IsMember reports whether the user can access the workspace
func (s *Store) IsMember(workspaceID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM workspace_members
		WHERE workspace_id = ? AND user_id = ?
	`, workspaceID, userID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanWorkspace(row *sql.Row) (*Workspace, error) {
	var ws Workspace
	var isDefault int
	var createdAt, updatedAt string

	err := row.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.Icon, &isDefault, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ws.IsDefault = isDefault != 0
	ws.CreatedAt = parseTime(createdAt)
	ws.UpdatedAt = parseTime(updatedAt)

	return &ws, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
