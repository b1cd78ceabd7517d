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

// EventSink accepts events. Put never blocks.
type EventSink interface {
	Put(event Event) error
}

// EventSource hands out events one at a time. Get blocks until an event is
// available; a sentinel means no more events will follow.
type EventSource interface {
	Get() Event

	// Acknowledge marks one event returned by Get as fully processed.
	Acknowledge() error
}

// EventBuffer is a named, type guarded FIFO between two stages.
type EventBuffer interface {
	EventSink
	EventSource

	// Name returns the buffer label used in diagnostics.
	Name() string

	// Accepts returns the family this buffer type-checks against.
	Accepts() Kind

	// DrainBarrier blocks until every real event put so far has been
	// retrieved and acknowledged.
	DrainBarrier()

	Size() int
	IsEmpty() bool
	IsFull() bool
	IsDraining() bool
}
