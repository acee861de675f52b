package storage

import (
	"errors"
	"testing"
	"time"
)

func createTestTask(t *testing.T, store *Store, workspaceID, userID, title string, due *time.Time) *Task {
	t.Helper()

	now := time.Now()
	task := &Task{
		ID:          GenerateID(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Title:       title,
		DueDate:     due,
		Urgency:     3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.CreateTask(task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	return task
}

func taskFixtures(t *testing.T) (*Store, *Workspace, *User) {
	t.Helper()

	store := newTestStore(t)
	user := createTestUser(t, store, "tasks@example.com")
	ws, err := store.EnsureDefaultWorkspace(user.ID)
	if err != nil {
		t.Fatalf("EnsureDefaultWorkspace failed: %v", err)
	}
	return store, ws, user
}

func TestColumnForDueDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tonight := time.Date(2026, 8, 23, 23, 30, 0, 0, time.UTC)
	nextWeek := now.AddDate(0, 0, 7)

	tests := []struct {
		name string
		due  *time.Time
		want string
	}{
		{"no due date", nil, ColumnSomeday},
		{"yesterday", &yesterday, ColumnOverdue},
		{"later today", &tonight, ColumnToday},
		{"next week", &nextWeek, ColumnUpcoming},
	}

	for _, tt := range tests {
		if got := ColumnForDueDate(tt.due, now); got != tt.want {
			t.Errorf("%s: expected column '%s', got '%s'", tt.name, tt.want, got)
		}
	}
}

func TestCreateTaskLandsInDueDateColumn(t *testing.T) {
	t.Parallel()
	store, ws, user := taskFixtures(t)

	due := time.Now()
	task := createTestTask(t, store, ws.ID, user.ID, "Ship the release", &due)

	if task.Column != ColumnToday {
		t.Errorf("Expected column '%s', got '%s'", ColumnToday, task.Column)
	}
	if task.Position != 0 {
		t.Errorf("Expected position 0, got %d", task.Position)
	}

	// A second task in the same column appends
	second := createTestTask(t, store, ws.ID, user.ID, "Write release notes", &due)
	if second.Position != 1 {
		t.Errorf("Expected position 1, got %d", second.Position)
	}

	// No due date lands in someday
	someday := createTestTask(t, store, ws.ID, user.ID, "Learn sqlite internals", nil)
	if someday.Column != ColumnSomeday {
		t.Errorf("Expected column '%s', got '%s'", ColumnSomeday, someday.Column)
	}
}

func TestUrgencyClamped(t *testing.T) {
	t.Parallel()
	store, ws, user := taskFixtures(t)

	now := time.Now()
	task := &Task{
		ID:          GenerateID(),
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Title:       "Extremely urgent",
		Urgency:     99,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.CreateTask(task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if task.Urgency != 5 {
		t.Errorf("Expected urgency clamped to 5, got %f", task.Urgency)
	}
}

func TestMoveTask(t *testing.T) {
	t.Parallel()
	store, ws, user := taskFixtures(t)

	due := time.Now()
	a := createTestTask(t, store, ws.ID, user.ID, "a", &due)
	b := createTestTask(t, store, ws.ID, user.ID, "b", &due)
	c := createTestTask(t, store, ws.ID, user.ID, "c", &due)

	// Move c to the top of today
	if err := store.MoveTask(c.ID, ColumnToday, 0); err != nil {
		t.Fatalf("MoveTask failed: %v", err)
	}

	tasks, err := store.ListTasks(ws.ID)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}

	order := map[string]int{}
	for _, task := range tasks {
		if task.Column == ColumnToday {
			order[task.Title] = task.Position
		}
	}
	if order["c"] != 0 || order["a"] != 1 || order["b"] != 2 {
		t.Errorf("Expected order c=0 a=1 b=2, got %v", order)
	}

	// Move a to another column; the gap closes behind it
	if err := store.MoveTask(a.ID, ColumnSomeday, 0); err != nil {
		t.Fatalf("MoveTask failed: %v", err)
	}
	moved, err := store.GetTask(a.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if moved.Column != ColumnSomeday || moved.Position != 0 {
		t.Errorf("Expected a in someday at 0, got %s/%d", moved.Column, moved.Position)
	}

	remaining, err := store.GetTask(b.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if remaining.Position != 1 {
		t.Errorf("Expected b shifted to position 1, got %d", remaining.Position)
	}
}

func TestSetTaskCompleted(t *testing.T) {
	t.Parallel()
	store, ws, user := taskFixtures(t)

	due := time.Now()
	task := createTestTask(t, store, ws.ID, user.ID, "Finish the report", &due)

	done, err := store.SetTaskCompleted(task.ID, true)
	if err != nil {
		t.Fatalf("SetTaskCompleted failed: %v", err)
	}
	if !done.Completed || done.Column != ColumnDone {
		t.Errorf("Expected completed task in done, got completed=%v column=%s", done.Completed, done.Column)
	}

	// Un-completing returns the task to its due-date column
	back, err := store.SetTaskCompleted(task.ID, false)
	if err != nil {
		t.Fatalf("SetTaskCompleted failed: %v", err)
	}
	if back.Completed || back.Column != ColumnToday {
		t.Errorf("Expected reopened task in today, got completed=%v column=%s", back.Completed, back.Column)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	t.Parallel()
	store, ws, user := taskFixtures(t)

	task := createTestTask(t, store, ws.ID, user.ID, "Temporary", nil)

	comment := &Comment{
		ID:        GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		Content:   "on it",
		CreatedAt: time.Now(),
	}
	if err := store.CreateComment(comment); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	reminder := &Reminder{
		ID:        GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		RemindAt:  time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	if err := store.CreateReminder(reminder); err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}

	if err := store.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	if _, err := store.GetComment(comment.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected comment to cascade, got %v", err)
	}
	if _, err := store.GetReminder(reminder.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected reminder to cascade, got %v", err)
	}
}
