// Package events carries the outbound notifications the progress engine emits
// after a successful mutation. Delivery (email, webhooks, audit log) is the
// subscribers' concern; publishing here is synchronous and in-process.
package events

import (
	"log"
	"sync"
)

type Kind string

const (
	KindMilestoneProgress Kind = "milestone_progress"
	KindBookingProgress   Kind = "booking_progress"
	KindApprovalRequested Kind = "approval_requested"
	KindApprovalResolved  Kind = "approval_resolved"
)

// Event describes one observable change on a booking's work breakdown.
type Event struct {
	BookingID   uint64  `json:"booking_id"`
	MilestoneID *uint64 `json:"milestone_id,omitempty"`
	TaskID      *uint64 `json:"task_id,omitempty"`
	Kind        Kind    `json:"kind"`
	NewProgress *int    `json:"new_progress,omitempty"`
}

// Subscriber receives published events. Implementations must not block.
type Subscriber interface {
	Notify(e Event)
}

// Publisher is the side the core sees.
type Publisher interface {
	Publish(e Event)
}

// Dispatcher fans events out to registered subscribers.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a subscriber for all subsequent events.
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, s)
}

// Publish delivers the event to every subscriber in registration order.
func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.subscribers {
		s.Notify(e)
	}
}

// LogSubscriber writes events to the standard logger. It is the default
// subscriber wired in main so progress changes are always visible.
type LogSubscriber struct{}

func (LogSubscriber) Notify(e Event) {
	switch e.Kind {
	case KindMilestoneProgress, KindBookingProgress:
		if e.NewProgress != nil {
			log.Printf("event %s booking=%d progress=%d", e.Kind, e.BookingID, *e.NewProgress)
			return
		}
	}
	log.Printf("event %s booking=%d", e.Kind, e.BookingID)
}
