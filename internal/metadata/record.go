// file: internal/metadata/record.go
// version: 1.1.0
// guid: 3e91c2d4-8b0a-4f6e-a7d5-1c9b2e4f6a83

package metadata

import (
	"sync"
	"time"
)

// CandidateRecord is one book's metadata as returned by the catalog, before the
// host merges it with results from other sources.
type CandidateRecord struct {
	Title       string            `json:"title" yaml:"title"`
	Authors     []string          `json:"authors" yaml:"authors"`
	Identifiers map[string]string `json:"identifiers" yaml:"identifiers"`
	Comments    string            `json:"comments,omitempty" yaml:"comments,omitempty"`
	Publisher   string            `json:"publisher" yaml:"publisher"`
	Language    string            `json:"language" yaml:"language"`
	Tags        []string          `json:"tags" yaml:"tags"`
	URL         string            `json:"url" yaml:"url"`
	CoverURL    string            `json:"cover_url" yaml:"cover_url"`
	PubDate     *time.Time        `json:"pubdate,omitempty" yaml:"pubdate,omitempty"`
}

// ID returns the catalog identifier of the record.
func (r CandidateRecord) ID() string {
	return r.Identifiers[ProviderID]
}

// Cover is a downloaded cover image together with the source that produced it.
// BookID is the catalog id the cover belongs to, resolved by identify when the
// request carried none.
type Cover struct {
	Owner  Source `json:"-" yaml:"-"`
	Data   []byte `json:"-" yaml:"-"`
	BookID string `json:"book_id" yaml:"book_id"`
}

// Sink is an append-only result collection supplied by the caller.
type Sink[T any] interface {
	Put(item T)
}

// Queue is a Sink backed by a slice. It is safe for concurrent use so a host
// can share one queue between several sources.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Put appends an item.
func (q *Queue[T]) Put(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// Len reports the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes and returns all queued items in insertion order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
