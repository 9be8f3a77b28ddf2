// Package history keeps a bounded trailing log of relayed messages per user
// for later moderation review. Both sides of a session record every exchange,
// so a report can include the conversation as the reporter saw it.
package history

import "sync"

// MaxEntries is the number of recent messages retained per user.
const MaxEntries = 20

// Side labels who sent an entry relative to the buffer's owner.
type Side string

const (
	SideSelf    Side = "self"
	SidePartner Side = "partner"
)

// Entry is a single relayed message as recorded in a user's buffer.
type Entry struct {
	Side Side   `json:"side"`
	Text string `json:"text"`
	Ts   int64  `json:"ts"`
}

// Buffer stores the last MaxEntries messages per user. It is goroutine-safe
// and uses a ring buffer internally.
type Buffer struct {
	mu      sync.RWMutex
	buffers map[string]*ring // user ID -> ring buffer
}

// ring is a fixed-size circular buffer of Entry.
type ring struct {
	items []Entry
	pos   int
	count int
}

// NewBuffer creates a new empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		buffers: make(map[string]*ring),
	}
}

// Add appends an entry to the user's ring buffer. If the buffer is full,
// the oldest entry is overwritten.
func (b *Buffer) Add(userID string, e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.buffers[userID]
	if !ok {
		r = &ring{items: make([]Entry, MaxEntries)}
		b.buffers[userID] = r
	}

	r.items[r.pos] = e
	r.pos = (r.pos + 1) % MaxEntries
	if r.count < MaxEntries {
		r.count++
	}
}

// Get returns the user's entries in chronological order (oldest first).
// Returns an empty slice if the user has no buffer.
func (b *Buffer) Get(userID string) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.buffers[userID]
	if !ok {
		return []Entry{}
	}

	result := make([]Entry, r.count)
	start := (r.pos - r.count + MaxEntries) % MaxEntries
	for i := 0; i < r.count; i++ {
		result[i] = r.items[(start+i)%MaxEntries]
	}
	return result
}

// Remove deletes a user's buffer.
func (b *Buffer) Remove(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.buffers, userID)
}
