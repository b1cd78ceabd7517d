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
	"fmt"

	"github.com/viniarck/kytos/internal/buffer"
	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/events"
)

// Stage names.
const (
	stageRaw    = "raw"
	stageMsgIn  = "msg_in"
	stageMsgOut = "msg_out"
	stageApp    = "app"
)

// runStage consumes src until it hands out a sentinel. A type mismatch while
// forwarding an event is not recoverable and aborts this stage only; any
// other processing error is logged and the loop goes on.
func (c *Controller) runStage(name string, src *buffer.EventBuffer, process func(domain.Event) error) error {
	log := c.logger.WithStage(name)
	log.Info().Str("buffer", src.Name()).Msg("Stage started")

	processed := c.metrics.processed.WithLabelValues(name)
	failed := c.metrics.failed.WithLabelValues(name)

	for {
		ev := src.Get()
		if events.IsSentinel(ev) {
			log.Info().Msg("Stage stopped")
			return nil
		}

		err := process(ev)
		if ackErr := src.Acknowledge(); ackErr != nil {
			log.Error().Err(ackErr).Msg("Acknowledge failed")
		}
		if err == nil {
			processed.Inc()
			continue
		}

		failed.Inc()
		if errors.HasCode(err, errors.ErrCodeTypeMismatch) {
			aborted := errors.NewStageAbortedError(name, err)
			log.Error().Err(err).Str("event", ev.String()).Msg("Stage aborted")
			return aborted
		}
		log.Warn().Err(err).Str("event", ev.Name()).Msg("Failed to process event")
	}
}

func unexpected(stage string, ev domain.Event) error {
	return errors.New(errors.ErrCodeEventValidation, fmt.Sprintf("%s stage cannot process %T", stage, ev))
}

// processRaw decodes a raw chunk into inbound messages.
func (c *Controller) processRaw(ev domain.Event) error {
	raw, ok := ev.(*events.RawEvent)
	if !ok {
		return unexpected(stageRaw, ev)
	}
	msgs, err := c.decoder.Decode(raw)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEventValidation, "failed to decode raw event", err).
			WithContext("connection", raw.Source)
	}
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if err := c.buffers.MsgIn.Put(m); err != nil {
			return err
		}
	}
	return nil
}

// processMsgIn runs the message handlers and queues what they return.
func (c *Controller) processMsgIn(ev domain.Event) error {
	msg, ok := ev.(*events.MessageEvent)
	if !ok {
		return unexpected(stageMsgIn, ev)
	}
	if len(c.handlers) == 0 {
		return c.route(notifyMessage(msg))
	}
	for _, h := range c.handlers {
		out, err := h.HandleMessage(msg)
		if err != nil {
			c.logger.Warn().Err(err).Str("handler", h.Name()).Str("event", msg.Name()).
				Msg("Message handler failed")
			continue
		}
		if err := c.route(out); err != nil {
			return err
		}
	}
	return nil
}

// route queues outbound messages on msg_out and everything else on app.
func (c *Controller) route(out []domain.Event) error {
	for _, ev := range out {
		if ev == nil {
			continue
		}
		dst := c.buffers.App
		if ev.Kind() == domain.KindMsgOut {
			dst = c.buffers.MsgOut
		}
		if err := dst.Put(ev); err != nil {
			return err
		}
	}
	return nil
}

// processMsgOut writes an outbound message to its connection.
func (c *Controller) processMsgOut(ev domain.Event) error {
	msg, ok := ev.(*events.MessageEvent)
	if !ok {
		return unexpected(stageMsgOut, ev)
	}
	conn, ok := c.conns.get(msg.Destination)
	if !ok {
		c.logger.Warn().Str("connection", msg.Destination).Str("event", msg.Name()).
			Msg("Unknown destination, message dropped")
		return nil
	}
	return conn.write(msg.Payload)
}

func (c *Controller) processApp(ev domain.Event) error {
	return c.dispatcher.Dispatch(ev)
}
