package web

import (
	"sync"
	"time"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

const boardCacheTTL = 30 * time.Second

// BoardColumn is one ordered column of the board view
type BoardColumn struct {
	Name  string         `json:"name"`
	Tasks []storage.Task `json:"tasks"`
}

// boardCache memoizes board responses per workspace with a timestamp
// expiry. Any write to a workspace invalidates its entry.
type boardCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]boardEntry
}

type boardEntry struct {
	columns []BoardColumn
	at      time.Time
}

func newBoardCache(ttl time.Duration) *boardCache {
	return &boardCache{
		ttl:     ttl,
		entries: make(map[string]boardEntry),
	}
}

func (bc *boardCache) get(workspaceID string) ([]BoardColumn, bool) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	entry, ok := bc.entries[workspaceID]
	if !ok {
		return nil, false
	}
	if time.Since(entry.at) > bc.ttl {
		delete(bc.entries, workspaceID)
		return nil, false
	}
	return entry.columns, true
}

func (bc *boardCache) put(workspaceID string, columns []BoardColumn) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.entries[workspaceID] = boardEntry{columns: columns, at: time.Now()}
}

func (bc *boardCache) invalidate(workspaceID string) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	delete(bc.entries, workspaceID)
}

// buildBoard groups workspace tasks into display-ordered columns
func buildBoard(tasks []storage.Task) []BoardColumn {
	byColumn := make(map[string][]storage.Task)
	for _, t := range tasks {
		byColumn[t.Column] = append(byColumn[t.Column], t)
	}

	columns := make([]BoardColumn, 0, len(storage.Columns))
	for _, name := range storage.Columns {
		colTasks := byColumn[name]
		if colTasks == nil {
			colTasks = []storage.Task{}
		}
		columns = append(columns, BoardColumn{Name: name, Tasks: colTasks})
	}
	return columns
}
