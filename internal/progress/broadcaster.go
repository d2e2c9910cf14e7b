// Package progress fans out per-job progress messages to live subscribers.
//
// Delivery is at-most-once and best-effort: a slow or absent subscriber
// never blocks the publisher, and events published while nobody is listening
// are simply lost. Late subscribers read the persisted job status instead;
// there is no replay buffer.
package progress

import (
	"sync"
	"time"
)

// Event is one progress message for a job. Sequence numbers increase
// monotonically within a job so subscribers can detect gaps.
type Event struct {
	JobID     string    `json:"job_id"`
	Sequence  uint64    `json:"seq"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"ts"`
}

// subscriberBuffer bounds how many undelivered events a subscriber may lag
// behind before further events are dropped for it.
const subscriberBuffer = 16

// Subscription is one viewer's handle on a job's event stream.
type Subscription struct {
	// C delivers events in publish order until Unsubscribe closes it.
	C     <-chan Event
	jobID string
	ch    chan Event
}

// JobID reports which job this subscription observes.
func (s *Subscription) JobID() string {
	return s.jobID
}

// Broadcaster is an in-process publish/subscribe channel keyed by job
// identifier. It is safe for concurrent subscribe, unsubscribe, and publish
// from multiple goroutines.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[string]map[chan Event]struct{}
	sequences   map[string]uint64
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[chan Event]struct{}),
		sequences:   make(map[string]uint64),
	}
}

// Subscribe registers a new subscriber for a job's events.
func (b *Broadcaster) Subscribe(jobID string) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, jobID: jobID, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[jobID]; !ok {
		b.subscribers[jobID] = make(map[chan Event]struct{})
	}
	b.subscribers[jobID][ch] = struct{}{}
	return sub
}

// Unsubscribe detaches a subscriber and closes its channel. Once the last
// subscriber for a job detaches, no subscriber state remains for that job.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	chans, ok := b.subscribers[sub.jobID]
	if !ok {
		return
	}
	if _, ok := chans[sub.ch]; !ok {
		return
	}
	delete(chans, sub.ch)
	close(sub.ch)
	if len(chans) == 0 {
		delete(b.subscribers, sub.jobID)
	}
}

// Publish fans one message out to every subscriber of the job. Events are
// assigned the job's next sequence number whether or not anyone is
// listening. Sends never block: a subscriber with a full buffer misses the
// event.
func (b *Broadcaster) Publish(jobID, message string) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sequences[jobID]++
	evt := Event{
		JobID:     jobID,
		Sequence:  b.sequences[jobID],
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	for ch := range b.subscribers[jobID] {
		select {
		case ch <- evt:
		default:
		}
	}
	return evt
}

// Release drops the per-job sequence counter. Called after the terminal
// event so finished jobs hold no publisher state.
func (b *Broadcaster) Release(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sequences, jobID)
}
