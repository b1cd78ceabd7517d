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

package topology

import (
	"fmt"

	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/events"
	"github.com/viniarck/kytos/internal/id"
	"github.com/viniarck/kytos/internal/logger"
)

// HandlerName is the name the topology handler registers under.
const HandlerName = "topology"

// Handler applies link_up and link_down application events to a Registry.
type Handler struct {
	registry *Registry
	logger   *logger.Logger
}

var _ domain.EventHandler = (*Handler)(nil)

// NewHandler creates a handler updating registry.
func NewHandler(registry *Registry, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{registry: registry, logger: log.WithComponent(HandlerName)}
}

// Name implements domain.EventHandler.
func (h *Handler) Name() string { return HandlerName }

// Listens implements domain.EventHandler.
func (h *Handler) Listens() []string {
	return []string{`kytos/topology\.link_(up|down)`}
}

// Handle implements domain.EventHandler.
func (h *Handler) Handle(event domain.Event) error {
	ev, ok := event.(*events.AppEvent)
	if !ok {
		return errors.New(errors.ErrCodeEventValidation, fmt.Sprintf("unexpected event %T", event))
	}

	a, err := endpoint(ev, events.ContentInterfaceA)
	if err != nil {
		return err
	}
	b, err := endpoint(ev, events.ContentInterfaceB)
	if err != nil {
		return err
	}

	switch ev.Name() {
	case events.NameTopologyLinkUp:
		lid, added := h.registry.AddLink(a, b)
		if added {
			h.logger.Info().Str("link", lid.String()).Str("interface_a", a.String()).
				Str("interface_b", b.String()).Msg("Link up")
		}
	case events.NameTopologyLinkDown:
		lid := id.NewLinkID(a, b)
		if h.registry.RemoveLink(lid) {
			h.logger.Info().Str("link", lid.String()).Msg("Link down")
		} else {
			h.logger.Debug().Str("link", lid.String()).Msg("Link down for an unknown link")
		}
	default:
		return errors.New(errors.ErrCodeEventValidation, "unexpected event name "+ev.Name())
	}
	return nil
}

func endpoint(ev *events.AppEvent, key string) (id.InterfaceID, error) {
	s, ok := ev.ContentString(key)
	if !ok {
		return id.InterfaceID{}, errors.New(errors.ErrCodeEventValidation, "missing "+key).
			WithContext("event", ev.Name())
	}
	return id.ParseInterfaceID(s)
}
