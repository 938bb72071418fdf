// Package dedupe tracks client request IDs so that retried create requests
// are applied at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 10_000

// Status is the state of a request ID as seen by Claim.
type Status int

const (
	// Claimed means the ID was new and is now reserved for the caller.
	Claimed Status = iota
	// Pending means another caller holds the ID and has not completed it.
	Pending
	// Completed means the ID was already applied; the result is returned.
	Completed
)

func (s Status) String() string {
	switch s {
	case Claimed:
		return "claimed"
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Tracker records request IDs together with the ID of the event they created.
type Tracker interface {
	// Claim atomically checks id and reserves it when new. The result is
	// only set when the status is Completed.
	Claim(ctx context.Context, id string) (result string, status Status)

	// Complete stores the result for a claimed id.
	Complete(ctx context.Context, id, result string)

	// Release forgets a claimed id so the request may be retried, e.g. when
	// the create was rejected.
	Release(ctx context.Context, id string)

	Size() int
}

// ringTracker keeps IDs in a map and their arrival order in a ring so the
// oldest one can be evicted in O(1).
type ringTracker struct {
	mu      sync.Mutex
	seen    map[string]entry
	order   []string
	next    int
	maxSize int
}

type entry struct {
	result string
	done   bool
}

// NewTracker creates an in-memory tracker.
func NewTracker(opts ...Option) Tracker {
	d := &ringTracker{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]entry)
	if d.maxSize > 0 {
		d.order = make([]string, 0, min(d.maxSize, defaultMaxSize))
	}
	return d
}

func (d *ringTracker) Claim(_ context.Context, id string) (string, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.seen[id]; ok {
		if !e.done {
			return "", Pending
		}
		return e.result, Completed
	}
	if d.maxSize > 0 {
		if len(d.order) < d.maxSize {
			d.order = append(d.order, id)
		} else {
			if old := d.order[d.next]; old != "" {
				delete(d.seen, old)
			}
			d.order[d.next] = id
			d.next = (d.next + 1) % d.maxSize
		}
	}
	d.seen[id] = entry{}
	return "", Claimed
}

func (d *ringTracker) Complete(_ context.Context, id, result string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; ok {
		d.seen[id] = entry{result: result, done: true}
	}
}

// Release drops id and blanks its ring slot. The slot is reused once the
// ring wraps around to it.
func (d *ringTracker) Release(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i, v := range d.order {
		if v == id {
			d.order[i] = ""
			break
		}
	}
}

func (d *ringTracker) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
