package authcore

import (
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples engine operations from the audit sink. Events
// are handed to a buffered channel and written by a single goroutine; when
// the buffer is full the event is dropped and counted rather than blocking
// a login path.
type auditDispatcher struct {
	sink    AuditSink
	events  chan AuditEvent
	dropped atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

func newAuditDispatcher(sink AuditSink, bufferSize int) *auditDispatcher {
	d := &auditDispatcher{
		sink:   sink,
		events: make(chan AuditEvent, bufferSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *auditDispatcher) run() {
	defer close(d.done)
	for event := range d.events {
		d.sink.Write(event)
	}
}

// dispatch enqueues the event, dropping it when the buffer is full.
func (d *auditDispatcher) dispatch(event AuditEvent) {
	select {
	case d.events <- event:
	default:
		d.dropped.Add(1)
	}
}

// droppedCount reports how many events were lost to backpressure.
func (d *auditDispatcher) droppedCount() uint64 {
	return d.dropped.Load()
}

// close drains buffered events and waits for the writer to finish.
func (d *auditDispatcher) close() {
	d.closeOnce.Do(func() {
		close(d.events)
	})
	<-d.done
}
