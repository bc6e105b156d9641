package batch

import (
	"sync"
	"time"
)

const (
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// Progress is a point-in-time snapshot of one batch. CurrentVideo is a
// best-effort label of an item in flight; under concurrency the last writer
// wins and the snapshot may transiently lag, self-correcting as later
// updates arrive.
type Progress struct {
	Completed    int       `json:"completed"`
	Total        int       `json:"total"`
	Failed       int       `json:"failed"`
	CurrentVideo string    `json:"current_video,omitempty"`
	Percent      int       `json:"percent"`
	Status       string    `json:"status"`
	LastUpdated  time.Time `json:"last_updated"`
}

// ProgressTracker maps batch IDs to their live progress snapshots. Entries
// live for the process lifetime; the authoritative record of an analysis is
// the persisted row, not this cache.
type ProgressTracker struct {
	mu      sync.RWMutex
	batches map[string]Progress
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{batches: make(map[string]Progress)}
}

// Update overwrites the full snapshot for a batch
func (t *ProgressTracker) Update(batchID string, completed, total int, currentVideo string, failed int) {
	percent := 0
	if total > 0 {
		percent = completed * 100 / total
	}

	status := ProgressInProgress
	if completed == total {
		status = ProgressCompleted
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.batches[batchID] = Progress{
		Completed:    completed,
		Total:        total,
		Failed:       failed,
		CurrentVideo: currentVideo,
		Percent:      percent,
		Status:       status,
		LastUpdated:  time.Now().UTC(),
	}
}

// Get returns the snapshot for a batch. An unknown batch ID is a normal
// not-found condition.
func (t *ProgressTracker) Get(batchID string) (Progress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	progress, ok := t.batches[batchID]
	return progress, ok
}
