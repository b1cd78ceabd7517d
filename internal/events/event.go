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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/viniarck/kytos/internal/domain"
)

// Well known event names emitted by the core.
const (
	NameRawIn             = "kytos/core.raw.in"
	NameMessageIn         = "kytos/core.message.in"
	NameMessageOut        = "kytos/core.message.out"
	NameConnectionNew     = "kytos/core.connection.new"
	NameConnectionLost    = "kytos/core.connection.lost"
	NameShutdown          = "kytos/core.shutdown"
	NameTopologyLinkUp    = "kytos/topology.link_up"
	NameTopologyLinkDown  = "kytos/topology.link_down"
	ContentInterfaceA     = "interface_a"
	ContentInterfaceB     = "interface_b"
	ContentConnectionID   = "connection_id"
	ContentRemoteAddress  = "remote_address"
	ContentShutdownReason = "reason"
)

// base carries the fields shared by every event.
type base struct {
	name string
	uuid string
	ts   time.Time
}

func newBase(name string) base {
	return base{
		name: name,
		uuid: uuid.NewString(),
		ts:   time.Now(),
	}
}

// Name returns the dotted event name.
func (b base) Name() string { return b.name }

// UUID returns the event identifier.
func (b base) UUID() string { return b.uuid }

// Timestamp returns the creation time.
func (b base) Timestamp() time.Time { return b.ts }

// RawEvent holds bytes read from a switch connection.
type RawEvent struct {
	base
	// Source is the connection id the bytes were read from.
	Source  string
	Payload []byte
}

// NewRawEvent creates a raw event for bytes read from source.
func NewRawEvent(source string, payload []byte) *RawEvent {
	return &RawEvent{base: newBase(NameRawIn), Source: source, Payload: payload}
}

// Kind implements domain.Event.
func (e *RawEvent) Kind() domain.Kind { return domain.KindRaw }

func (e *RawEvent) String() string {
	return fmt.Sprintf("RawEvent{source=%s, len=%d}", e.Source, len(e.Payload))
}

// MessageEvent is a protocol message travelling in either direction. The
// direction decides its kind, so an inbound message can never be queued on
// the outbound buffer and vice versa.
type MessageEvent struct {
	base
	outbound bool
	// Source is set on inbound messages, Destination on outbound ones.
	Source      string
	Destination string
	Payload     []byte
	Content     map[string]any
}

// NewMsgInEvent creates an inbound message received on connection source.
func NewMsgInEvent(name, source string, payload []byte) *MessageEvent {
	if name == "" {
		name = NameMessageIn
	}
	return &MessageEvent{base: newBase(name), Source: source, Payload: payload, Content: map[string]any{}}
}

// NewMsgOutEvent creates an outbound message for connection destination.
func NewMsgOutEvent(name, destination string, payload []byte) *MessageEvent {
	if name == "" {
		name = NameMessageOut
	}
	return &MessageEvent{base: newBase(name), outbound: true, Destination: destination, Payload: payload, Content: map[string]any{}}
}

// Kind implements domain.Event.
func (e *MessageEvent) Kind() domain.Kind {
	if e.outbound {
		return domain.KindMsgOut
	}
	return domain.KindMsgIn
}

// Outbound reports whether the message is headed to a switch.
func (e *MessageEvent) Outbound() bool { return e.outbound }

func (e *MessageEvent) String() string {
	if e.outbound {
		return fmt.Sprintf("MessageEvent{name=%s, out, destination=%s, len=%d}", e.name, e.Destination, len(e.Payload))
	}
	return fmt.Sprintf("MessageEvent{name=%s, in, source=%s, len=%d}", e.name, e.Source, len(e.Payload))
}

// AppEvent is an application level event routed by the dispatcher.
type AppEvent struct {
	base
	Content map[string]any
}

// NewAppEvent creates an application event. A nil content becomes an empty map.
func NewAppEvent(name string, content map[string]any) *AppEvent {
	if content == nil {
		content = map[string]any{}
	}
	return &AppEvent{base: newBase(name), Content: content}
}

// Kind implements domain.Event.
func (e *AppEvent) Kind() domain.Kind { return domain.KindApp }

// ContentString returns Content[key] when it holds a string.
func (e *AppEvent) ContentString(key string) (string, bool) {
	v, ok := e.Content[key].(string)
	return v, ok
}

func (e *AppEvent) String() string {
	return fmt.Sprintf("AppEvent{name=%s, content=%v}", e.name, e.Content)
}

// SentinelEvent marks the end of a stream. It is accepted by every buffer.
type SentinelEvent struct {
	base
}

// NewSentinel creates a sentinel event.
func NewSentinel() *SentinelEvent {
	return &SentinelEvent{base: newBase(NameShutdown)}
}

// Kind implements domain.Event.
func (e *SentinelEvent) Kind() domain.Kind { return domain.KindSentinel }

func (e *SentinelEvent) String() string { return "SentinelEvent{}" }

// IsSentinel reports whether ev marks the end of a stream.
func IsSentinel(ev domain.Event) bool {
	return ev != nil && ev.Kind() == domain.KindSentinel
}
