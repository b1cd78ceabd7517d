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
	"io"
	"regexp"
	"sync"

	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/logger"
)

// route is a registered handler with its compiled listen patterns.
type route struct {
	handler  domain.EventHandler
	patterns []*regexp.Regexp
}

func (r *route) matches(name string) bool {
	for _, p := range r.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// Dispatcher implements the Observer pattern for application events.
// Handlers are called in registration order.
type Dispatcher struct {
	routes []*route
	mu     sync.RWMutex
	logger *logger.Logger
	closed bool
}

var _ domain.EventDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a new event dispatcher.
func NewDispatcher(log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		logger: log.WithComponent("dispatcher"),
	}
}

// Register adds an event handler to the dispatcher. Each listen pattern must
// match the whole event name.
func (d *Dispatcher) Register(handler domain.EventHandler) error {
	if handler == nil {
		return errors.New(errors.ErrCodeConfiguration, "handler cannot be nil")
	}

	r := &route{handler: handler}
	for _, expr := range handler.Listens() {
		p, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, "invalid listen pattern", err).
				WithContext("handler", handler.Name()).
				WithContext("pattern", expr)
		}
		r.patterns = append(r.patterns, p)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New(errors.ErrCodeConfiguration, "dispatcher is closed")
	}

	for _, existing := range d.routes {
		if existing.handler.Name() == handler.Name() {
			return errors.New(errors.ErrCodeConfiguration, "handler already registered").
				WithContext("handler", handler.Name())
		}
	}

	d.routes = append(d.routes, r)
	d.logger.Debug().
		Str("handler", handler.Name()).
		Strs("listens", handler.Listens()).
		Msg("Event handler registered")

	return nil
}

// Unregister removes an event handler from the dispatcher.
func (d *Dispatcher) Unregister(handlerName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New(errors.ErrCodeConfiguration, "dispatcher is closed")
	}

	for i, r := range d.routes {
		if r.handler.Name() == handlerName {
			d.routes = append(d.routes[:i], d.routes[i+1:]...)
			d.logger.Debug().
				Str("handler", handlerName).
				Msg("Event handler unregistered")
			return nil
		}
	}

	return errors.NewResourceNotFoundError("handler: " + handlerName)
}

// Dispatch sends an event to every handler listening to its name. A failing
// handler does not stop delivery to the others; an error is returned only
// when every matching handler failed.
func (d *Dispatcher) Dispatch(event domain.Event) error {
	if event == nil {
		return errors.New(errors.ErrCodeEventDispatch, "event cannot be nil")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return errors.New(errors.ErrCodeEventDispatch, "dispatcher is closed")
	}

	var lastErr error
	var matched, ok int
	for _, r := range d.routes {
		if !r.matches(event.Name()) {
			continue
		}
		matched++
		if err := r.handler.Handle(event); err != nil {
			d.logger.Debug().
				Err(err).
				Str("handler", r.handler.Name()).
				Str("event", event.Name()).
				Msg("Handler failed to process event")
			lastErr = err
			continue
		}
		ok++
	}

	if matched == 0 {
		d.logger.Debug().Str("event", event.Name()).Msg("No handler listens to event")
		return nil
	}

	if ok == 0 && lastErr != nil {
		d.logger.Error().Err(lastErr).Str("event", event.String()).Msg("Every handler failed to process event")
		return errors.NewEventDispatchError(lastErr).WithContext("event", event.Name())
	}
	return nil
}

// Close stops the dispatcher and closes handlers implementing io.Closer.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true

	var closeErrors []error
	for _, r := range d.routes {
		if closer, ok := r.handler.(io.Closer); ok {
			d.logger.Debug().Str("handler", r.handler.Name()).Msg("Closing handler")
			if err := closer.Close(); err != nil {
				d.logger.Debug().
					Err(err).
					Str("handler", r.handler.Name()).
					Msg("Failed to close handler")
				closeErrors = append(closeErrors, err)
			}
		}
	}

	d.routes = nil

	d.logger.Info().Msg("Event dispatcher closed")

	if len(closeErrors) > 0 {
		return closeErrors[0]
	}
	return nil
}

// HandlerCount returns the number of registered handlers.
func (d *Dispatcher) HandlerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.routes)
}
