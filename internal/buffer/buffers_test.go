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
	"bytes"
	"strings"
	"testing"

	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/events"
	"github.com/viniarck/kytos/internal/logger"
)

func TestNewBuffers(t *testing.T) {
	s := New()

	want := []struct {
		name string
		kind domain.Kind
	}{
		{RawEventName, domain.KindRaw},
		{MsgInEventName, domain.KindMsgIn},
		{MsgOutEventName, domain.KindMsgOut},
		{AppEventName, domain.KindApp},
	}

	all := s.All()
	if len(all) != len(want) {
		t.Fatalf("expected %d buffers, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Name() != w.name || all[i].Accepts() != w.kind {
			t.Errorf("buffer %d = %s/%s, want %s/%s", i, all[i].Name(), all[i].Accepts(), w.name, w.kind)
		}
		b, ok := s.Lookup(w.name)
		if !ok || b != all[i] {
			t.Errorf("Lookup(%s) failed", w.name)
		}
	}
	if _, ok := s.Lookup("nope"); ok {
		t.Error("Lookup() found an unknown buffer")
	}
}

func TestBuffersRejectWrongFamily(t *testing.T) {
	s := New()

	err := s.MsgIn.Put(events.NewAppEvent("kytos/core.test", nil))
	if !errors.HasCode(err, errors.ErrCodeTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if s.MsgIn.Size() != 0 {
		t.Errorf("msg_in size = %d after rejected put", s.MsgIn.Size())
	}
	for _, b := range []*EventBuffer{s.Raw, s.MsgOut, s.App} {
		if b.Size() != 0 {
			t.Errorf("%s changed after a put on msg_in", b.Name())
		}
	}
}

func TestBroadcastShutdown(t *testing.T) {
	s := New()

	if err := s.Raw.Put(events.NewRawEvent("c1", []byte("hello"))); err != nil {
		t.Fatal(err)
	}
	if err := s.MsgIn.Put(events.NewMsgInEvent("", "c1", nil)); err != nil {
		t.Fatal(err)
	}
	if err := s.MsgOut.Put(events.NewMsgOutEvent("", "c1", nil)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := s.App.Put(events.NewAppEvent("kytos/core.test", nil)); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.BroadcastShutdown(); err != nil {
		t.Fatalf("BroadcastShutdown() error = %v", err)
	}
	// A second broadcast is a no-op per buffer.
	if err := s.BroadcastShutdown(); err != nil {
		t.Fatalf("second BroadcastShutdown() error = %v", err)
	}

	queued := map[string]int{RawEventName: 1, MsgInEventName: 1, MsgOutEventName: 1, AppEventName: 2}
	for _, b := range s.All() {
		if !b.IsDraining() {
			t.Errorf("%s is not draining", b.Name())
		}

		before := b.Size()
		if err := b.Put(sameKindEvent(b.Accepts())); err != nil {
			t.Errorf("%s: put after shutdown error = %v", b.Name(), err)
		}
		if b.Size() != before {
			t.Errorf("%s grew after shutdown", b.Name())
		}

		for i := 0; i < queued[b.Name()]; i++ {
			ev := b.Get()
			if events.IsSentinel(ev) {
				t.Fatalf("%s: sentinel before real event %d", b.Name(), i)
			}
		}
		if ev := b.Get(); !events.IsSentinel(ev) {
			t.Errorf("%s: expected sentinel, got %s", b.Name(), ev)
		}
		if !b.IsEmpty() {
			t.Errorf("%s: events after the sentinel", b.Name())
		}
	}
}

func TestBroadcastShutdownLogs(t *testing.T) {
	var out bytes.Buffer
	s := New(WithLogger(logger.New(&out, false)))

	if err := s.BroadcastShutdown(); err != nil {
		t.Fatal(err)
	}

	log := out.String()
	for _, name := range []string{RawEventName, MsgInEventName, MsgOutEventName, AppEventName} {
		if !strings.Contains(log, name) {
			t.Errorf("expected a drain log line for %s", name)
		}
	}
	if strings.Index(log, RawEventName) > strings.Index(log, AppEventName) {
		t.Error("raw buffer should enter draining before app buffer")
	}
}

func TestBuffersStats(t *testing.T) {
	s := New(WithCapacity(8))
	_ = s.App.Put(events.NewAppEvent("kytos/core.test", nil))

	stats := s.Stats()
	if len(stats) != 4 {
		t.Fatalf("expected 4 stats, got %d", len(stats))
	}
	app := stats[3]
	if app.Name != AppEventName || app.Size != 1 || app.Capacity != 8 || app.Draining {
		t.Errorf("unexpected app stat %+v", app)
	}
}

func sameKindEvent(k domain.Kind) domain.Event {
	switch k {
	case domain.KindRaw:
		return events.NewRawEvent("c1", nil)
	case domain.KindMsgIn:
		return events.NewMsgInEvent("", "c1", nil)
	case domain.KindMsgOut:
		return events.NewMsgOutEvent("", "c1", nil)
	default:
		return events.NewAppEvent("kytos/core.test", nil)
	}
}
