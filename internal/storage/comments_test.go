package storage

import (
	"errors"
	"testing"
	"time"
)

func TestComments(t *testing.T) {
	t.Parallel()
	store, ws, user := taskFixtures(t)

	task := createTestTask(t, store, ws.ID, user.ID, "Review the PR", nil)

	now := time.Now()
	older := &Comment{
		ID:        GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		Content:   "started looking",
		CreatedAt: now.Add(-time.Hour),
	}
	newer := &Comment{
		ID:        GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		Content:   "left two nits",
		CreatedAt: now,
	}
	for _, c := range []*Comment{newer, older} {
		if err := store.CreateComment(c); err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
	}

	comments, err := store.ListComments(task.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(comments))
	}
	if comments[0].ID != older.ID {
		t.Errorf("Expected oldest comment first, got %s", comments[0].ID)
	}

	if err := store.DeleteComment(older.ID); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	if _, err := store.GetComment(older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
