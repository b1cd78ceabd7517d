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

package events

import (
	"testing"

	"github.com/viniarck/kytos/internal/domain"
)

func TestEventKinds(t *testing.T) {
	tests := []struct {
		name string
		ev   domain.Event
		kind domain.Kind
	}{
		{"raw", NewRawEvent("c1", []byte{1, 2}), domain.KindRaw},
		{"msg in", NewMsgInEvent("", "c1", nil), domain.KindMsgIn},
		{"msg out", NewMsgOutEvent("", "c1", nil), domain.KindMsgOut},
		{"app", NewAppEvent("kytos/core.test", nil), domain.KindApp},
		{"sentinel", NewSentinel(), domain.KindSentinel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ev.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", tt.ev.Kind(), tt.kind)
			}
			if tt.ev.UUID() == "" {
				t.Error("UUID() is empty")
			}
			if tt.ev.Timestamp().IsZero() {
				t.Error("Timestamp() is zero")
			}
			if IsSentinel(tt.ev) != (tt.kind == domain.KindSentinel) {
				t.Errorf("IsSentinel() = %v for kind %s", IsSentinel(tt.ev), tt.kind)
			}
		})
	}
}

func TestEventDefaults(t *testing.T) {
	if n := NewMsgInEvent("", "c1", nil).Name(); n != NameMessageIn {
		t.Errorf("default inbound name = %s", n)
	}
	out := NewMsgOutEvent("", "c1", nil)
	if out.Name() != NameMessageOut || !out.Outbound() {
		t.Errorf("unexpected outbound message %s", out)
	}
	app := NewAppEvent(NameTopologyLinkUp, nil)
	if app.Content == nil {
		t.Fatal("nil content was not replaced")
	}
	app.Content[ContentInterfaceA] = "s1:1"
	if v, ok := app.ContentString(ContentInterfaceA); !ok || v != "s1:1" {
		t.Errorf("ContentString() = %q, %v", v, ok)
	}
	if _, ok := app.ContentString("missing"); ok {
		t.Error("ContentString() found a missing key")
	}
}

func TestEventUUIDsDiffer(t *testing.T) {
	a, b := NewSentinel(), NewSentinel()
	if a.UUID() == b.UUID() {
		t.Error("two events share a UUID")
	}
	if IsSentinel(nil) {
		t.Error("IsSentinel(nil) = true")
	}
}

func TestKindString(t *testing.T) {
	want := map[domain.Kind]string{
		domain.KindUnknown:  "unknown",
		domain.KindRaw:      "raw",
		domain.KindMsgIn:    "msg_in",
		domain.KindMsgOut:   "msg_out",
		domain.KindApp:      "app",
		domain.KindSentinel: "sentinel",
		domain.Kind(200):    "unknown",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("Kind(%d).String() = %s, want %s", k, k.String(), s)
		}
	}
}
