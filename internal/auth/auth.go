// Package auth implements email/password registration and opaque
// session tokens over the storage layer.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

// SessionTTL is how long a login session stays valid
const SessionTTL = 30 * 24 * time.Hour

const minPasswordLen = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLen)
)

// Service wraps the store with authentication operations
type Service struct {
	store *storage.Store
}

// NewService creates an auth service backed by the given store
func NewService(store *storage.Store) *Service {
	return &Service{store: store}
}

// Register creates a user with a bcrypt password hash and their default
// workspace, then opens a session.
func (s *Service) Register(email, name, password string) (*storage.User, *storage.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, errors.New("invalid email address")
	}
	if len(password) < minPasswordLen {
		return nil, nil, ErrWeakPassword
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &storage.User{
		ID:           storage.GenerateID(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, nil, err
	}

	if _, err := s.store.EnsureDefaultWorkspace(user.ID); err != nil {
		return nil, nil, err
	}

	sess, err := s.openSession(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, sess, nil
}

// Login verifies credentials and opens a session. The default workspace
// is re-checked on every login to heal duplicates.
func (s *Service) Login(email, password string) (*storage.User, *storage.Session, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if _, err := s.store.EnsureDefaultWorkspace(user.ID); err != nil {
		return nil, nil, err
	}

	sess, err := s.openSession(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, sess, nil
}

// Authenticate resolves a session token to its user
func (s *Service) Authenticate(token string) (*storage.User, error) {
	if token == "" {
		return nil, storage.ErrNotFound
	}

	sess, err := s.store.GetSession(token)
	if err != nil {
		return nil, err
	}

	return s.store.GetUser(sess.UserID)
}

// Logout deletes the session token
func (s *Service) Logout(token string) error {
	return s.store.DeleteSession(token)
}

func (s *Service) openSession(userID string) (*storage.Session, error) {
	now := time.Now()
	sess := &storage.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.store.CreateSession(sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}
