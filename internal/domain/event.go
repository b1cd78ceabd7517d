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

package domain

import "time"

// Kind is the family an event belongs to. Each buffer accepts exactly one
// family, plus the sentinel which belongs to all of them.
type Kind uint8

const (
	// KindUnknown is the zero value and is accepted by no buffer.
	KindUnknown Kind = iota

	// KindRaw marks bytes read from a switch connection, not yet decoded.
	KindRaw

	// KindMsgIn marks decoded protocol messages received from a switch.
	KindMsgIn

	// KindMsgOut marks protocol messages to be written to a switch.
	KindMsgOut

	// KindApp marks application level events.
	KindApp

	// KindSentinel marks the end of a stream.
	KindSentinel
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindRaw:      "raw",
	KindMsgIn:    "msg_in",
	KindMsgOut:   "msg_out",
	KindApp:      "app",
	KindSentinel: "sentinel",
}

// String returns the family name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is anything that travels through an event buffer.
type Event interface {
	// Kind returns the family of this event.
	Kind() Kind

	// Name returns the dotted event name, e.g. "kytos/core.connection.new".
	Name() string

	// UUID returns a unique identifier for this event.
	UUID() string

	// Timestamp returns the creation time of the event.
	Timestamp() time.Time

	// String returns a human-readable representation of the event.
	String() string
}

// EventHandler processes application events.
type EventHandler interface {
	// Handle processes one event.
	Handle(event Event) error

	// Name returns the handler's identifier.
	Name() string

	// Listens returns regular expressions matched against Event.Name.
	Listens() []string
}

// EventDispatcher manages event distribution to registered handlers.
type EventDispatcher interface {
	// Register adds an event handler to the dispatcher.
	Register(handler EventHandler) error

	// Unregister removes an event handler from the dispatcher.
	Unregister(handlerName string) error

	// Dispatch sends an event to all handlers listening to its name.
	Dispatch(event Event) error

	// Close stops the dispatcher and releases resources.
	Close() error
}
