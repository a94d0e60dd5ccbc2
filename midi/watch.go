package midi

import (
	"context"
	"slices"
	"sync"
	"time"
)

// PortEvent is emitted when an output port appears or goes away
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// Watcher polls the output ports and reports hot-plug changes
type Watcher struct {
	ports    map[string]bool
	mu       sync.RWMutex
	events   chan PortEvent
	pollRate time.Duration
	list     func(ctx context.Context) ([]string, error)
}

// NewWatcher creates a watcher over the system's output ports
func NewWatcher() *Watcher {
	return newWatcher(time.Second, func(ctx context.Context) ([]string, error) {
		ports, err := OutPorts(ctx)
		if err != nil {
			return nil, err
		}
		return PortNames(ports), nil
	})
}

func newWatcher(pollRate time.Duration, list func(ctx context.Context) ([]string, error)) *Watcher {
	return &Watcher{
		ports:    make(map[string]bool),
		events:   make(chan PortEvent, 16),
		pollRate: pollRate,
		list:     list,
	}
}

// Events returns a channel of port connect/disconnect events.
// It is closed when Run returns.
func (w *Watcher) Events() <-chan PortEvent {
	return w.events
}

// Ports returns the currently known port names, sorted
func (w *Watcher) Ports() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.ports))
	for name := range w.ports {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	// Initial scan
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	names, err := w.list(ctx)
	if err != nil {
		// hung or failed scan: keep the last known state
		return
	}

	seen := make(map[string]bool, len(names))
	var events []PortEvent

	w.mu.Lock()
	for _, name := range names {
		seen[name] = true
		if !w.ports[name] {
			w.ports[name] = true
			events = append(events, PortEvent{Type: PortConnected, Name: name})
		}
	}
	for name := range w.ports {
		if !seen[name] {
			delete(w.ports, name)
			events = append(events, PortEvent{Type: PortDisconnected, Name: name})
		}
	}
	w.mu.Unlock()

	for _, ev := range events {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
