package storage

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Sentinel errors surfaced to the web layer for status mapping.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrDefaultWorkspace = errors.New("default workspace cannot be deleted")
)

// Store handles SQLite operations for TuduAI
type Store struct {
	db *sql.DB
}

// ExpandPath resolves a leading ~ in a database path
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return path, nil
}

// NewStore opens (creating if necessary) the database at dbPath
func NewStore(dbPath string) (*Store, error) {
	dbPath, err := ExpandPath(dbPath)
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats summarizes row counts across the main tables
type Stats struct {
	Users      int `json:"users"`
	Workspaces int `json:"workspaces"`
	Tasks      int `json:"tasks"`
	Comments   int `json:"comments"`
	Reminders  int `json:"reminders"`
}

// Stats returns row counts for the status command
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	for _, c := range []struct {
		table string
		dest  *int
	}{
		{"users", &stats.Users},
		{"workspaces", &stats.Workspaces},
		{"tasks", &stats.Tasks},
		{"comments", &stats.Comments},
		{"reminders", &stats.Reminders},
	} {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return stats, nil
}

// GenerateID creates a new UUID for a record
func GenerateID() string {
	return uuid.New().String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullTime maps an optional timestamp to a nullable column value
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func scanNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	if t.IsZero() {
		return nil
	}
	return &t
}
