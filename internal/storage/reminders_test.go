package storage

import (
	"testing"
	"time"
)

func TestDueReminders(t *testing.T) {
	t.Parallel()
	store, ws, user := taskFixtures(t)

	due := time.Now().Add(24 * time.Hour)
	task := createTestTask(t, store, ws.ID, user.ID, "Pay rent", &due)

	now := time.Now()
	past := &Reminder{
		ID:        GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		RemindAt:  now.Add(-time.Minute),
		CreatedAt: now,
	}
	future := &Reminder{
		ID:        GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		RemindAt:  now.Add(time.Hour),
		CreatedAt: now,
	}
	for _, r := range []*Reminder{past, future} {
		if err := store.CreateReminder(r); err != nil {
			t.Fatalf("CreateReminder failed: %v", err)
		}
	}

	// Only the past reminder is due, joined with task and recipient
	dueList, err := store.DueReminders(now, 0)
	if err != nil {
		t.Fatalf("DueReminders failed: %v", err)
	}
	if len(dueList) != 1 {
		t.Fatalf("Expected 1 due reminder, got %d", len(dueList))
	}

	d := dueList[0]
	if d.ID != past.ID {
		t.Errorf("Expected reminder %s, got %s", past.ID, d.ID)
	}
	if d.TaskTitle != "Pay rent" {
		t.Errorf("Expected task title 'Pay rent', got '%s'", d.TaskTitle)
	}
	if d.Email != "tasks@example.com" {
		t.Errorf("Expected recipient 'tasks@example.com', got '%s'", d.Email)
	}
	if d.TaskDue == nil {
		t.Error("Expected task due date to be joined in")
	}

	// Marking sent removes it from the due list
	if err := store.MarkReminderSent(past.ID, time.Now()); err != nil {
		t.Fatalf("MarkReminderSent failed: %v", err)
	}

	dueList, err = store.DueReminders(time.Now(), 0)
	if err != nil {
		t.Fatalf("DueReminders failed: %v", err)
	}
	if len(dueList) != 0 {
		t.Errorf("Expected no due reminders after send, got %d", len(dueList))
	}

	sent, err := store.GetReminder(past.ID)
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	if !sent.Sent || sent.SentAt == nil {
		t.Errorf("Expected reminder marked sent, got sent=%v sent_at=%v", sent.Sent, sent.SentAt)
	}

	// ListReminders returns both, soonest first
	all, err := store.ListReminders(task.ID)
	if err != nil {
		t.Fatalf("ListReminders failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 reminders, got %d", len(all))
	}
	if all[0].ID != past.ID {
		t.Errorf("Expected soonest reminder first, got %s", all[0].ID)
	}
}
