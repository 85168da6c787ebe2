// Package eventbus provides an in-memory, asynchronous notification bus.
// Notifications are enqueued through a buffered channel and handed to
// subscribers by a worker pool.
package eventbus

import (
	"context"
	"log"
	"sync"

	"github.com/shaharia-lab/mailcast/internal/notifier"
)

const (
	defaultWorkers    = 3
	defaultBufferSize = 100
)

// Listener is a function that handles one notification.
type Listener func(ctx context.Context, n notifier.Notification)

// Bus is the interface for publishing notifications and managing subscribers.
type Bus interface {
	// Publish enqueues a notification. It never blocks: if the buffer is
	// full, the notification is dropped and a warning is logged.
	Publish(n notifier.Notification)

	// Subscribe registers a listener that will be called for every published
	// notification. All listeners receive each notification (broadcast).
	// Subscribe must be called before the first Publish.
	Subscribe(listener Listener)

	// Close stops accepting new notifications and waits for all pending ones
	// to be processed.
	Close()
}

// inMemoryBus is the default Bus implementation.
type inMemoryBus struct {
	ch        chan notifier.Notification
	listeners []Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	workers   int
}

// New creates a new in-memory Bus with the specified number of worker
// goroutines. If workers is <= 0, defaultWorkers (3) is used.
func New(workers int) Bus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	b := &inMemoryBus{
		ch:      make(chan notifier.Notification, defaultBufferSize),
		workers: workers,
	}
	b.startWorkers()
	return b
}

// startWorkers launches the worker goroutines that drain the channel.
func (b *inMemoryBus) startWorkers() {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for n := range b.ch {
				b.dispatch(n)
			}
		}()
	}
}

// dispatch calls all registered listeners for the given notification.
// Each listener is invoked with panic recovery so one bad listener cannot
// affect the others.
func (b *inMemoryBus) dispatch(n notifier.Notification) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("eventbus: listener panicked for notification %q: %v", n.Event.ID, r)
				}
			}()
			l(context.Background(), n)
		}()
	}
}

// Publish enqueues a notification. If the buffer is full it is dropped.
func (b *inMemoryBus) Publish(n notifier.Notification) {
	select {
	case b.ch <- n:
		// enqueued successfully
	default:
		log.Printf("eventbus: buffer full, dropping notification %q", n.Event.ID)
	}
}

// Subscribe adds a listener to receive all future notifications.
func (b *inMemoryBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

// Close drains and closes the channel, then waits for all workers to finish.
func (b *inMemoryBus) Close() {
	close(b.ch)
	b.wg.Wait()
}
