package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/mail"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

// recordingSender captures sent messages and optionally fails per recipient
type recordingSender struct {
	mu       sync.Mutex
	messages []mail.Message
	failTo   string
}

func (r *recordingSender) Send(ctx context.Context, msg mail.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.To == r.failTo {
		return "", errors.New("smtp on fire")
	}
	r.messages = append(r.messages, msg)
	return "msg-" + msg.To, nil
}

func (r *recordingSender) sent() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.messages...)
}

func setupReminder(t *testing.T, store *storage.Store, email string, remindAt time.Time) *storage.Reminder {
	t.Helper()

	user := &storage.User{
		ID:           storage.GenerateID(),
		Email:        email,
		Name:         "Test",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	ws, err := store.EnsureDefaultWorkspace(user.ID)
	if err != nil {
		t.Fatalf("EnsureDefaultWorkspace failed: %v", err)
	}

	due := remindAt.Add(time.Hour)
	task := &storage.Task{
		ID:          storage.GenerateID(),
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Title:       "Water the plants",
		DueDate:     &due,
		Urgency:     3,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := store.CreateTask(task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	reminder := &storage.Reminder{
		ID:        storage.GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		RemindAt:  remindAt,
		CreatedAt: time.Now(),
	}
	if err := store.CreateReminder(reminder); err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	return reminder
}

func TestSweep(t *testing.T) {
	t.Parallel()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	setupReminder(t, store, "due@example.com", time.Now().Add(-time.Minute))
	setupReminder(t, store, "later@example.com", time.Now().Add(time.Hour))

	sender := &recordingSender{}
	d := New(store, sender, time.Minute, 50, 4)

	sent, err := d.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if sent != 1 {
		t.Errorf("Expected 1 reminder delivered, got %d", sent)
	}

	msgs := sender.sent()
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	if msgs[0].To != "due@example.com" {
		t.Errorf("Expected recipient 'due@example.com', got '%s'", msgs[0].To)
	}
	if msgs[0].Subject != "Reminder: Water the plants" {
		t.Errorf("Unexpected subject '%s'", msgs[0].Subject)
	}

	// A second sweep has nothing left to send
	sent, err = d.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("Expected 0 reminders on second sweep, got %d", sent)
	}
}

func TestRenderMessageEscapesHTML(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	msg := renderMessage(storage.DueReminder{
		TaskTitle: `<img src=x onerror="alert(1)">`,
		TaskDue:   &due,
		Email:     "victim@example.com",
		UserName:  "<b>Mallory</b>",
	})

	if strings.Contains(msg.HTML, "<img") || strings.Contains(msg.HTML, "<b>") {
		t.Errorf("HTML body contains unescaped markup: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "&lt;img src=x onerror=&#34;alert(1)&#34;&gt;") {
		t.Errorf("Expected escaped title in HTML body, got: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "&lt;b&gt;Mallory&lt;/b&gt;") {
		t.Errorf("Expected escaped user name in HTML body, got: %s", msg.HTML)
	}

	// The plain-text body carries the title verbatim
	if !strings.Contains(msg.Text, `<img src=x onerror=\"alert(1)\">`) {
		t.Errorf("Expected raw title in text body, got: %s", msg.Text)
	}
}

func TestSweepLeavesFailedSendsUnsent(t *testing.T) {
	t.Parallel()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	broken := setupReminder(t, store, "broken@example.com", time.Now().Add(-time.Minute))
	setupReminder(t, store, "fine@example.com", time.Now().Add(-time.Minute))

	sender := &recordingSender{failTo: "broken@example.com"}
	d := New(store, sender, time.Minute, 50, 2)

	sent, err := d.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if sent != 1 {
		t.Errorf("Expected 1 reminder delivered, got %d", sent)
	}

	// The failed reminder stays unsent for the next sweep
	r, err := store.GetReminder(broken.ID)
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	if r.Sent {
		t.Error("Expected failed reminder to stay unsent")
	}

	// Once the sender recovers, the next sweep delivers it
	sender.failTo = ""
	sent, err = d.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if sent != 1 {
		t.Errorf("Expected the retried reminder to deliver, got %d", sent)
	}
}
