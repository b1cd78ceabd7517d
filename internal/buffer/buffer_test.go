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

package buffer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/events"
)

// seqEvent is an app event tagged with its producer and sequence number.
type seqEvent struct {
	producer int
	seq      int
}

func (e seqEvent) Kind() domain.Kind    { return domain.KindApp }
func (e seqEvent) Name() string         { return "test/seq" }
func (e seqEvent) UUID() string         { return fmt.Sprintf("%d-%d", e.producer, e.seq) }
func (e seqEvent) Timestamp() time.Time { return time.Time{} }
func (e seqEvent) String() string       { return e.UUID() }

// getWithin runs Get in a goroutine and waits at most d for it.
func getWithin(b *EventBuffer, d time.Duration) (domain.Event, bool) {
	ch := make(chan domain.Event, 1)
	go func() { ch <- b.Get() }()
	select {
	case ev := <-ch:
		return ev, true
	case <-time.After(d):
		return nil, false
	}
}

func TestFIFO(t *testing.T) {
	b := NewEventBuffer("app_event", domain.KindApp)

	for i := 0; i < 100; i++ {
		require.NoError(t, b.Put(seqEvent{seq: i}))
	}
	assert.Equal(t, 100, b.Size())

	for i := 0; i < 100; i++ {
		ev := b.Get()
		assert.Equal(t, i, ev.(seqEvent).seq)
	}
	assert.True(t, b.IsEmpty())
}

func TestTypeGuard(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	b := NewEventBuffer(MsgInEventName, domain.KindMsgIn, WithMetrics(m))
	require.NoError(t, b.Put(events.NewMsgInEvent("", "c1", nil)))

	tests := []struct {
		name string
		ev   domain.Event
	}{
		{"app event", events.NewAppEvent("kytos/core.test", nil)},
		{"raw event", events.NewRawEvent("c1", nil)},
		{"outbound message", events.NewMsgOutEvent("", "c1", nil)},
		{"nil event", nil},
		{"nil message pointer", (*events.MessageEvent)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Put(tt.ev)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeTypeMismatch), "got %v", err)
			assert.Contains(t, err.Error(), MsgInEventName)
			assert.Equal(t, 1, b.Size(), "queue must be unmodified")
		})
	}

	assert.Equal(t, float64(len(tests)), testutil.ToFloat64(m.rejected.WithLabelValues(MsgInEventName)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.enqueued.WithLabelValues(MsgInEventName)))
	assert.False(t, b.IsDraining())
}

func TestSentinelAcceptedByEveryKind(t *testing.T) {
	for _, k := range []domain.Kind{domain.KindRaw, domain.KindMsgIn, domain.KindMsgOut, domain.KindApp} {
		b := NewEventBuffer(k.String(), k)
		require.NoError(t, b.Put(events.NewSentinel()), k.String())
		assert.True(t, b.IsDraining())
		assert.True(t, events.IsSentinel(b.Get()))
	}
}

func TestDrainIdempotence(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	b := NewEventBuffer(AppEventName, domain.KindApp, WithMetrics(m))
	require.NoError(t, b.Put(seqEvent{seq: 1}))
	require.NoError(t, b.Put(events.NewSentinel()))
	assert.True(t, b.IsDraining())
	assert.Equal(t, 2, b.Size())

	// Neither real events, second sentinels nor wrongly typed events change
	// the queue once draining.
	assert.NoError(t, b.Put(seqEvent{seq: 2}))
	assert.NoError(t, b.Put(events.NewSentinel()))
	assert.NoError(t, b.Put(events.NewRawEvent("c1", nil)))
	assert.Equal(t, 2, b.Size())
	assert.True(t, b.IsDraining())
	assert.Equal(t, float64(3), testutil.ToFloat64(m.dropped.WithLabelValues(AppEventName)))

	assert.Equal(t, 1, b.Get().(seqEvent).seq)
	assert.True(t, events.IsSentinel(b.Get()))
	assert.True(t, b.IsDraining(), "draining is permanent")
}

func TestGetBlocksUntilPut(t *testing.T) {
	b := NewEventBuffer(AppEventName, domain.KindApp)
	require.NoError(t, b.Put(seqEvent{seq: 1}))
	assert.Equal(t, 1, b.Get().(seqEvent).seq)

	done := make(chan domain.Event, 1)
	go func() { done <- b.Get() }()

	select {
	case ev := <-done:
		t.Fatalf("Get returned %v on an empty buffer", ev)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, b.Put(seqEvent{seq: 2}))
	select {
	case ev := <-done:
		assert.Equal(t, 2, ev.(seqEvent).seq)
	case <-time.After(2 * time.Second):
		t.Fatal("Get did not wake up after Put")
	}
}

func TestNoLostWakeupsManyProducers(t *testing.T) {
	const producers = 16
	const perProducer = 2000

	b := NewEventBuffer(AppEventName, domain.KindApp)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := b.Put(seqEvent{producer: p, seq: i}); err != nil {
					t.Errorf("Put() error = %v", err)
					return
				}
			}
		}(p)
	}

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	received := make(chan struct{})
	go func() {
		defer close(received)
		for n := 0; n < producers*perProducer; n++ {
			ev := b.Get().(seqEvent)
			if ev.seq != last[ev.producer]+1 {
				t.Errorf("producer %d: got seq %d after %d", ev.producer, ev.seq, last[ev.producer])
			}
			last[ev.producer] = ev.seq
			if err := b.Acknowledge(); err != nil {
				t.Errorf("Acknowledge() error = %v", err)
			}
		}
	}()

	wg.Wait()
	select {
	case <-received:
	case <-time.After(10 * time.Second):
		t.Fatal("consumer stalled: lost wakeup")
	}

	assert.True(t, b.IsEmpty())
	if _, ok := getWithin(b, 20*time.Millisecond); ok {
		t.Fatal("Get returned on an empty buffer")
	}
}

func TestNilRawPointerRejected(t *testing.T) {
	b := NewEventBuffer(RawEventName, domain.KindRaw)

	err := b.Put((*events.RawEvent)(nil))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTypeMismatch), "got %v", err)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.Stat().Pending)
}

func TestDepthGaugeTracksConcurrentUse(t *testing.T) {
	const producers = 8
	const consumers = 4
	const perProducer = 500

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	b := NewEventBuffer(AppEventName, domain.KindApp, WithMetrics(m))

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := b.Put(seqEvent{producer: p, seq: i}); err != nil {
					t.Errorf("Put() error = %v", err)
					return
				}
			}
		}(p)
	}
	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < producers*perProducer/consumers; i++ {
				b.Get()
			}
		}()
	}
	wg.Wait()

	assert.True(t, b.IsEmpty())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.depth.WithLabelValues(AppEventName)))
	assert.Equal(t, float64(producers*perProducer), testutil.ToFloat64(m.dequeued.WithLabelValues(AppEventName)))
}

func TestAcknowledgeAndDrainBarrier(t *testing.T) {
	b := NewEventBuffer(AppEventName, domain.KindApp)

	err := b.Acknowledge()
	assert.True(t, errors.HasCode(err, errors.ErrCodeAcknowledge), "got %v", err)

	// Barrier on an idle buffer returns at once.
	b.DrainBarrier()

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Put(seqEvent{seq: i}))
	}
	require.NoError(t, b.Put(events.NewSentinel()))

	flushed := make(chan struct{})
	go func() {
		b.DrainBarrier()
		close(flushed)
	}()

	for i := 0; i < 3; i++ {
		b.Get()
		select {
		case <-flushed:
			t.Fatalf("barrier released with %d events unacknowledged", 3-i)
		case <-time.After(10 * time.Millisecond):
		}
		require.NoError(t, b.Acknowledge())
	}

	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("barrier not released after every event was acknowledged")
	}

	assert.True(t, events.IsSentinel(b.Get()))
	assert.Error(t, b.Acknowledge(), "sentinel is not counted")
}

func TestCapacity(t *testing.T) {
	unbounded := NewEventBuffer(AppEventName, domain.KindApp)
	for i := 0; i < 10; i++ {
		require.NoError(t, unbounded.Put(seqEvent{seq: i}))
	}
	assert.False(t, unbounded.IsFull())
	assert.Equal(t, 0, unbounded.Capacity())

	b := NewEventBuffer(AppEventName, domain.KindApp, WithCapacity(2))
	require.NoError(t, b.Put(seqEvent{seq: 1}))
	assert.False(t, b.IsFull())
	require.NoError(t, b.Put(seqEvent{seq: 2}))
	assert.True(t, b.IsFull())

	// Soft capacity: Put still succeeds.
	require.NoError(t, b.Put(seqEvent{seq: 3}))
	assert.Equal(t, 3, b.Size())
	b.Get()
	b.Get()
	assert.False(t, b.IsFull())
}

func TestStat(t *testing.T) {
	b := NewEventBuffer(RawEventName, domain.KindRaw, WithCapacity(5))
	require.NoError(t, b.Put(events.NewRawEvent("c1", []byte("x"))))
	require.NoError(t, b.Put(events.NewSentinel()))

	assert.Equal(t, Stat{
		Name:     RawEventName,
		Kind:     "raw",
		Size:     2,
		Capacity: 5,
		Draining: true,
		Pending:  1,
	}, b.Stat())
}

func TestMetricsReuseRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m1, err := NewMetrics(reg)
	require.NoError(t, err)
	m2, err := NewMetrics(reg)
	require.NoError(t, err)

	b1 := NewEventBuffer("a", domain.KindApp, WithMetrics(m1))
	b2 := NewEventBuffer("a", domain.KindApp, WithMetrics(m2))
	require.NoError(t, b1.Put(seqEvent{}))
	require.NoError(t, b2.Put(seqEvent{}))
	b1.Get()

	assert.Equal(t, float64(2), testutil.ToFloat64(m1.enqueued.WithLabelValues("a")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m1.dequeued.WithLabelValues("a")))
	// Both buffers share the label; the last observation wins.
	assert.Equal(t, float64(0), testutil.ToFloat64(m1.depth.WithLabelValues("a")))
}
