// Package session holds per-user state: the CV, the AI key and the analysis history.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/career-assistant/internal/types"
)

// History is an append-only log of analysis scores in insertion order.
// Entries are never modified or removed, and timestamps never decrease.
type History struct {
	mu      sync.RWMutex
	entries []types.HistoryEntry
	now     func() time.Time
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{now: time.Now}
}

// Append records a score. A clock that steps backwards reuses the previous timestamp.
func (h *History) Append(score int, source string) (types.HistoryEntry, error) {
	if score < 0 || score > 100 {
		return types.HistoryEntry{}, fmt.Errorf("score %d out of range 0-100", score)
	}
	if source == "" {
		source = types.SourceManual
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ts := h.now().Round(0)
	if n := len(h.entries); n > 0 && ts.Before(h.entries[n-1].Timestamp) {
		ts = h.entries[n-1].Timestamp
	}

	entry := types.HistoryEntry{Timestamp: ts, Score: score, Source: source}
	h.entries = append(h.entries, entry)
	return entry, nil
}

// Entries returns a copy of the log.
func (h *History) Entries() []types.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]types.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Trend returns the scores in order, for plotting.
func (h *History) Trend() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	scores := make([]int, len(h.entries))
	for i, e := range h.entries {
		scores[i] = e.Score
	}
	return scores
}
