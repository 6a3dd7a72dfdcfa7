package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/metrics"
)

const deliveryTimeout = 15 * time.Second

// Dispatcher delivers events on background workers so callers never wait on
// email. A full queue drops the event.
type Dispatcher struct {
	notifier Notifier
	log      *slog.Logger
	queue    chan Event
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(notifier Notifier, log *slog.Logger, workers, queueSize int) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		log:      log,
		queue:    make(chan Event, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Enqueue never blocks.
func (d *Dispatcher) Enqueue(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.RecordNotification(string(event.Kind), "dropped")
		d.log.Warn("notification dispatcher closed, dropping event", "kind", event.Kind)
		return
	}

	select {
	case d.queue <- event:
	default:
		metrics.RecordNotification(string(event.Kind), "dropped")
		d.log.Warn("notification queue full, dropping event", "kind", event.Kind)
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordNotification(string(event.Kind), "failed")
			d.log.Error("notification panicked", "kind", event.Kind, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, event); err != nil {
		metrics.RecordNotification(string(event.Kind), "failed")
		d.log.Error("notification failed", "kind", event.Kind, "error", err)
		return
	}
	metrics.RecordNotification(string(event.Kind), "sent")
}

// Close stops accepting events and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
