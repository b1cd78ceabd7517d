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

package controller

import (
	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/events"
)

// Decoder turns the bytes read from a connection into inbound messages.
type Decoder interface {
	Decode(raw *events.RawEvent) ([]*events.MessageEvent, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(raw *events.RawEvent) ([]*events.MessageEvent, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(raw *events.RawEvent) ([]*events.MessageEvent, error) {
	return f(raw)
}

// PassThrough is the default Decoder. Every chunk becomes one inbound
// message carrying the bytes untouched.
var PassThrough Decoder = DecoderFunc(func(raw *events.RawEvent) ([]*events.MessageEvent, error) {
	return []*events.MessageEvent{events.NewMsgInEvent("", raw.Source, raw.Payload)}, nil
})

// MessageHandler reacts to an inbound message. Returned events are queued by
// kind: outbound messages on msg_out, everything else on app.
type MessageHandler interface {
	Name() string
	HandleMessage(msg *events.MessageEvent) ([]domain.Event, error)
}

type funcHandler struct {
	name string
	fn   func(msg *events.MessageEvent) ([]domain.Event, error)
}

func (h funcHandler) Name() string { return h.name }

func (h funcHandler) HandleMessage(msg *events.MessageEvent) ([]domain.Event, error) {
	return h.fn(msg)
}

// MessageHandlerFunc returns a MessageHandler named name calling fn.
func MessageHandlerFunc(name string, fn func(msg *events.MessageEvent) ([]domain.Event, error)) MessageHandler {
	return funcHandler{name: name, fn: fn}
}

// notifyMessage is used when no MessageHandler is registered: the message is
// announced to applications as a kytos/core.message.in event.
func notifyMessage(msg *events.MessageEvent) []domain.Event {
	return []domain.Event{events.NewAppEvent(events.NameMessageIn, map[string]any{
		events.ContentConnectionID: msg.Source,
		"message":                  msg.Name(),
		"payload":                  msg.Payload,
	})}
}
