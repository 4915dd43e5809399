package notify

import (
	"context"
	"sync"
	"time"

	"github.com/787516/Matrimonial/internal/security"
	"github.com/787516/Matrimonial/pkg/logger"
)

// Event is one relationship activity addressed to TargetUserID.
type Event struct {
	TargetUserID uint      `json:"target_user_id"`
	ActorUserID  uint      `json:"actor_user_id"`
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	RelatedID    uint      `json:"related_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Sink delivers events somewhere. Errors are logged by the dispatcher.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event Event) error
}

// Dispatcher fans events out to its sinks from a bounded queue drained by
// worker goroutines. Notify never blocks: when the queue is full the event
// is dropped and logged.
type Dispatcher struct {
	sinks   []Sink
	queue   chan Event
	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(workers, queueSize int, sinks ...Sink) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		sinks:   sinks,
		queue:   make(chan Event, queueSize),
		workers: workers,
		timeout: 5 * time.Second,
	}
}

// Start launches the workers. Call Stop to drain and wait for them.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	logger.Info("Notification dispatcher started", "workers", d.workers, "sinks", len(d.sinks))
}

// Notify enqueues an event. Delivery runs detached from ctx, so a request
// that finishes first does not cancel it.
func (d *Dispatcher) Notify(ctx context.Context, targetUserID, actorUserID uint, eventType, message string, relatedID uint) {
	event := Event{
		TargetUserID: targetUserID,
		ActorUserID:  actorUserID,
		Type:         eventType,
		Message:      security.SanitizeText(message),
		RelatedID:    relatedID,
		OccurredAt:   time.Now().UTC(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logger.Warn("Notification dropped after shutdown", "type", eventType, "target", targetUserID)
		return
	}

	select {
	case d.queue <- event:
	default:
		logger.Warn("Notification queue full, dropping event", "type", eventType, "target", targetUserID)
	}
}

// Stop refuses new events, delivers what is queued and waits for the
// workers to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	logger.Info("Notification dispatcher stopped")
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for event := range d.queue {
		d.deliver(id, event)
	}
}

func (d *Dispatcher) deliver(workerID int, event Event) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.safeDeliver(ctx, sink, event)
		cancel()

		if err != nil {
			logger.Warn("Notification delivery failed",
				"sink", sink.Name(),
				"worker", workerID,
				"type", event.Type,
				"target", event.TargetUserID,
				"error", err,
			)
		}
	}
}

// a panicking sink must not take the worker down
func (d *Dispatcher) safeDeliver(ctx context.Context, sink Sink, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Notification sink panicked", "sink", sink.Name(), "panic", r)
		}
	}()
	return sink.Deliver(ctx, event)
}
