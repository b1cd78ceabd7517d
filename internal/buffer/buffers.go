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
	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/events"
	"github.com/viniarck/kytos/internal/logger"
)

// Buffer names.
const (
	RawEventName    = "raw_event"
	MsgInEventName  = "msg_in_event"
	MsgOutEventName = "msg_out_event"
	AppEventName    = "app_event"
)

// Buffers is the set of four buffers shared by the controller stages.
// The buffers are independent; ordering holds per buffer only.
type Buffers struct {
	Raw    *EventBuffer
	MsgIn  *EventBuffer
	MsgOut *EventBuffer
	App    *EventBuffer

	logger *logger.Logger
}

// New creates the buffer set. Options apply to each of the four buffers.
func New(opts ...Option) *Buffers {
	o := buildOptions(opts)
	return &Buffers{
		Raw:    NewEventBuffer(RawEventName, domain.KindRaw, opts...),
		MsgIn:  NewEventBuffer(MsgInEventName, domain.KindMsgIn, opts...),
		MsgOut: NewEventBuffer(MsgOutEventName, domain.KindMsgOut, opts...),
		App:    NewEventBuffer(AppEventName, domain.KindApp, opts...),
		logger: o.logger.WithComponent("buffers"),
	}
}

// All returns the buffers in shutdown order: raw, msg_in, msg_out, app.
func (s *Buffers) All() []*EventBuffer {
	return []*EventBuffer{s.Raw, s.MsgIn, s.MsgOut, s.App}
}

// Lookup returns the buffer with the given name.
func (s *Buffers) Lookup(name string) (*EventBuffer, bool) {
	for _, b := range s.All() {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// BroadcastShutdown puts one sentinel on every buffer, raw first and app
// last. Buffers that are already draining ignore it, so calling this twice
// is harmless.
func (s *Buffers) BroadcastShutdown() error {
	s.logger.Info().Msg("Stop signal received by buffers")
	s.logger.Info().Msg("Sending sentinel event to all stages")

	sentinel := events.NewSentinel()
	for _, b := range s.All() {
		if err := b.Put(sentinel); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns a snapshot of every buffer in shutdown order.
func (s *Buffers) Stats() []Stat {
	all := s.All()
	stats := make([]Stat, 0, len(all))
	for _, b := range all {
		stats = append(stats, b.Stat())
	}
	return stats
}
