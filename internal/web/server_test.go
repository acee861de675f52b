package web

import (
	"context"
	"testing"
	"time"
)

func TestRunContextShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.server.RunContext(ctx, "127.0.0.1:0")
	}()

	// Give the listener a moment to come up before cancelling
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Expected clean shutdown, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down after context cancellation")
	}
}
