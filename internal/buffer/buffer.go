// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package buffer implements the typed event queues that connect the
// controller stages.
//
// An EventBuffer accepts a single event kind plus the sentinel. Put never
// blocks; Get blocks until an event is queued. Once a sentinel has been put
// the buffer is draining: events already queued are still handed out in
// order, followed by the sentinel, and every later Put is dropped.
package buffer

import (
	"reflect"
	"sync"

	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/logger"
)

// Option configures an EventBuffer or a Buffers set.
type Option func(*options)

type options struct {
	logger   *logger.Logger
	capacity int
	metrics  *Metrics
}

// WithLogger sets the logger. Buffers log with a "buffer" field.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCapacity sets a soft capacity. It only affects IsFull and a warning
// log line; Put never blocks and never rejects because of it.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithMetrics records buffer activity on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}
	if o.capacity < 0 {
		o.capacity = 0
	}
	return o
}

// EventBuffer is a named, type guarded, blocking FIFO.
type EventBuffer struct {
	name     string
	accepted domain.Kind
	capacity int
	logger   *logger.Logger
	metrics  *bufferMetrics

	mu sync.Mutex
	// notEmpty is waited on while queue is empty.
	notEmpty *sync.Cond
	// flushed is broadcast when unfinished drops to zero.
	flushed  *sync.Cond
	queue    []domain.Event
	draining bool
	// unfinished counts real events put and not yet acknowledged.
	unfinished int
}

var _ domain.EventBuffer = (*EventBuffer)(nil)

// NewEventBuffer creates a buffer named name accepting events of kind accepted.
func NewEventBuffer(name string, accepted domain.Kind, opts ...Option) *EventBuffer {
	o := buildOptions(opts)
	b := &EventBuffer{
		name:     name,
		accepted: accepted,
		capacity: o.capacity,
		logger:   o.logger.WithBuffer(name),
		metrics:  o.metrics.forBuffer(name),
	}
	b.notEmpty = sync.NewCond(&b.mu)
	b.flushed = sync.NewCond(&b.mu)
	return b
}

// Name returns the buffer label.
func (b *EventBuffer) Name() string { return b.name }

// Accepts returns the kind this buffer type-checks against.
func (b *EventBuffer) Accepts() domain.Kind { return b.accepted }

// Capacity returns the soft capacity, 0 when unbounded.
func (b *EventBuffer) Capacity() int { return b.capacity }

// Put appends event to the queue.
//
// On a draining buffer Put does nothing and returns nil. Otherwise an event
// that is neither a sentinel nor of the accepted kind is refused with an
// ErrCodeTypeMismatch error and the queue is left untouched. Putting a
// sentinel switches the buffer to draining for good.
func (b *EventBuffer) Put(event domain.Event) error {
	kind := domain.KindUnknown
	if !isNilEvent(event) {
		kind = event.Kind()
	}

	b.mu.Lock()

	if b.draining {
		b.mu.Unlock()
		b.metrics.onDrop()
		b.logger.Debug().Str("kind", kind.String()).Msg("Buffer in stop mode, event dropped")
		return nil
	}

	sentinel := kind == domain.KindSentinel
	if !sentinel && kind != b.accepted {
		b.mu.Unlock()
		b.metrics.onReject()
		return errors.NewTypeMismatchError(b.name, b.accepted, kind)
	}

	b.queue = append(b.queue, event)
	depth := len(b.queue)
	if sentinel {
		b.draining = true
	} else {
		b.unfinished++
	}
	b.notEmpty.Signal()
	b.metrics.onPut(depth)
	b.mu.Unlock()

	b.logger.Debug().Str("kind", kind.String()).Int("size", depth).Msg("Added new event to buffer")

	if sentinel {
		b.logger.Info().Msg("Buffer in stop mode. Rejecting new events")
	} else if b.capacity > 0 && depth == b.capacity {
		b.logger.Warn().Int("capacity", b.capacity).Msg("Buffer reached its capacity")
	}
	return nil
}

// isNilEvent reports whether event is nil or a nil pointer behind the
// interface.
func isNilEvent(event domain.Event) bool {
	if event == nil {
		return true
	}
	v := reflect.ValueOf(event)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Get removes and returns the head of the queue, blocking while it is empty.
// A consumer that receives a sentinel must stop reading: nothing follows it.
func (b *EventBuffer) Get() domain.Event {
	b.mu.Lock()
	for len(b.queue) == 0 {
		b.notEmpty.Wait()
	}
	event := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	depth := len(b.queue)
	if depth == 0 {
		// Drop the backing array so a long lived buffer does not pin it.
		b.queue = nil
	}
	b.metrics.onGet(depth)
	b.mu.Unlock()

	b.logger.Debug().Str("kind", event.Kind().String()).Int("size", depth).Msg("Removing event from buffer")
	return event
}

// Acknowledge marks one real event returned by Get as processed.
// Sentinels are not counted and must not be acknowledged.
func (b *EventBuffer) Acknowledge() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.unfinished == 0 {
		return errors.NewAcknowledgeError(b.name)
	}
	b.unfinished--
	if b.unfinished == 0 {
		b.flushed.Broadcast()
	}
	return nil
}

// DrainBarrier blocks until every real event put so far has been retrieved
// and acknowledged. It has no timeout.
func (b *EventBuffer) DrainBarrier() {
	b.mu.Lock()
	for b.unfinished > 0 {
		b.flushed.Wait()
	}
	b.mu.Unlock()
}

// Size returns the number of queued events, sentinel included.
func (b *EventBuffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// IsEmpty reports whether no event is queued.
func (b *EventBuffer) IsEmpty() bool {
	return b.Size() == 0
}

// IsFull reports whether the soft capacity is reached. Always false when
// the buffer is unbounded.
func (b *EventBuffer) IsFull() bool {
	if b.capacity == 0 {
		return false
	}
	return b.Size() >= b.capacity
}

// IsDraining reports whether a sentinel has been put.
func (b *EventBuffer) IsDraining() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draining
}

// Stat is a point in time view of a buffer.
type Stat struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
	Draining bool   `json:"draining"`
	Pending  int    `json:"pending"`
}

// Stat returns the current state of the buffer.
func (b *EventBuffer) Stat() Stat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stat{
		Name:     b.name,
		Kind:     b.accepted.String(),
		Size:     len(b.queue),
		Capacity: b.capacity,
		Draining: b.draining,
		Pending:  b.unfinished,
	}
}
