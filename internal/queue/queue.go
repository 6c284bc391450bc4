// Package queue provides the bounded, priority-ordered buffer that holds
// announcements waiting for the speech sink.
package queue

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// DefaultMaxSize bounds the queue when no explicit size is given.
const DefaultMaxSize = 3

// PromptQueue is a bounded buffer of pending prompts ordered by priority
// descending, then creation time ascending. When an enqueue pushes the
// queue past its bound, prompts are evicted from the tail, so a newly
// enqueued low-priority prompt is the most likely to be dropped. A single
// mutex makes every operation atomic with respect to the others; the
// evaluation loop and manual insertions may touch one instance concurrently.
type PromptQueue struct {
	mu      sync.Mutex
	items   []models.QueuedPrompt
	maxSize int
}

// NewPromptQueue creates a queue bounded to maxSize prompts. Sizes below 1
// fall back to DefaultMaxSize.
func NewPromptQueue(maxSize int) *PromptQueue {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	return &PromptQueue{
		items:   make([]models.QueuedPrompt, 0, maxSize+1),
		maxSize: maxSize,
	}
}

// Enqueue inserts a prompt, restores the priority ordering, and truncates
// from the tail until the bound holds.
func (q *PromptQueue) Enqueue(p models.QueuedPrompt) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, p)
	sort.SliceStable(q.items, func(i, j int) bool {
		if q.items[i].Priority != q.items[j].Priority {
			return q.items[i].Priority > q.items[j].Priority
		}
		return q.items[i].CreatedAt.Before(q.items[j].CreatedAt)
	})

	for len(q.items) > q.maxSize {
		dropped := q.items[len(q.items)-1]
		q.items = q.items[:len(q.items)-1]
		slog.Debug("PromptQueue Enqueue evicted prompt", "id", dropped.ID, "type", dropped.Type, "priority", dropped.Priority)
	}

	slog.Debug("PromptQueue Enqueue", "id", p.ID, "type", p.Type, "priority", p.Priority, "queued", len(q.items))
}

// Dequeue removes and returns the head prompt (highest priority, oldest).
// The second return value is false when the queue is empty.
func (q *PromptQueue) Dequeue() (models.QueuedPrompt, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return models.QueuedPrompt{}, false
	}
	head := q.items[0]
	q.items = append(q.items[:0], q.items[1:]...)
	return head, true
}

// Peek returns the head prompt without removing it.
func (q *PromptQueue) Peek() (models.QueuedPrompt, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return models.QueuedPrompt{}, false
	}
	return q.items[0], true
}

// RemoveType removes every pending prompt of the given type and returns the
// number removed. Used to retract prompts that have gone stale, e.g. a
// check-in the runner already answered.
func (q *PromptQueue) RemoveType(pt models.PromptType) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	removed := 0
	for _, item := range q.items {
		if item.Type == pt {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
	if removed > 0 {
		slog.Debug("PromptQueue RemoveType", "type", pt, "removed", removed, "queued", len(q.items))
	}
	return removed
}

// Clear drops every pending prompt.
func (q *PromptQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// Len returns the number of pending prompts.
func (q *PromptQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
