package notify

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Sink is one delivery channel (log, Telegram, ...).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// deliverTimeout bounds a single sink call.
const deliverTimeout = 10 * time.Second

// Dispatcher queues events on a buffered channel and fans each one out to
// every sink from a single background goroutine.
type Dispatcher struct {
	queue chan Event
	sinks []Sink

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher creates a dispatcher with room for size queued events.
func NewDispatcher(size int, sinks ...Sink) *Dispatcher {
	if size < 1 {
		size = 1
	}
	return &Dispatcher{
		queue: make(chan Event, size),
		sinks: sinks,
		done:  make(chan struct{}),
	}
}

// Start launches the delivery loop. It exits once Close is called and the
// queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		for e := range d.queue {
			d.deliver(ctx, e)
		}
	}()
	log.WithField("sinks", len(d.sinks)).Info("Notification dispatcher started")
}

// Notify enqueues e. A full queue drops the event with a warning.
func (d *Dispatcher) Notify(_ context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.WithField("kind", e.Kind).Warn("Dispatcher closed, notification dropped")
		return
	}

	select {
	case d.queue <- e:
	default:
		log.WithFields(log.Fields{
			"kind":      e.Kind,
			"meetup_id": e.MeetupID,
		}).Warn("Notification queue full, event dropped")
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
// Start must have been called.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
	log.Info("Notification dispatcher stopped")
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	for _, s := range d.sinks {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliverTimeout)
		err := s.Deliver(sctx, e)
		cancel()
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"sink":      s.Name(),
				"kind":      e.Kind,
				"meetup_id": e.MeetupID,
			}).Warn("Notification delivery failed")
		}
	}
}
