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

// Package topology keeps an in-memory view of the links reported by
// application events. Nothing is persisted.
package topology

import (
	"sort"
	"sync"

	"github.com/viniarck/kytos/internal/id"
)

// Link is a known link between two interfaces.
type Link struct {
	ID         id.LinkID      `json:"id"`
	InterfaceA id.InterfaceID `json:"interface_a"`
	InterfaceB id.InterfaceID `json:"interface_b"`
}

// endpoints returns the interfaces of l, lowest first.
func (l Link) endpoints() (id.InterfaceID, id.InterfaceID) {
	if l.InterfaceB.Less(l.InterfaceA) {
		return l.InterfaceB, l.InterfaceA
	}
	return l.InterfaceA, l.InterfaceB
}

// Registry is a concurrency safe set of links.
type Registry struct {
	mu    sync.RWMutex
	links map[string]Link
	// refs counts the links each interface takes part in.
	refs map[id.InterfaceID]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		links: make(map[string]Link),
		refs:  make(map[id.InterfaceID]int),
	}
}

// AddLink records the link between a and b. It returns false when the link
// is already known, in either orientation.
func (r *Registry) AddLink(a, b id.InterfaceID) (id.LinkID, bool) {
	lid := id.NewLinkID(a, b)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[lid.Key()]; ok {
		return lid, false
	}
	r.links[lid.Key()] = Link{ID: lid, InterfaceA: a, InterfaceB: b}
	r.refs[a]++
	if b != a {
		r.refs[b]++
	}
	return lid, true
}

// RemoveLink forgets the link. It returns false when the link is unknown.
func (r *Registry) RemoveLink(lid id.LinkID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.links[lid.Key()]
	if !ok {
		return false
	}
	delete(r.links, lid.Key())
	r.release(l.InterfaceA)
	if l.InterfaceB != l.InterfaceA {
		r.release(l.InterfaceB)
	}
	return true
}

func (r *Registry) release(i id.InterfaceID) {
	if r.refs[i] <= 1 {
		delete(r.refs, i)
		return
	}
	r.refs[i]--
}

// Link returns the link with the given identifier.
func (r *Registry) Link(lid id.LinkID) (Link, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.links[lid.Key()]
	return l, ok
}

// Len returns the number of known links.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links)
}

// Links returns every link ordered by its lowest endpoint, then its highest.
func (r *Registry) Links() []Link {
	r.mu.RLock()
	out := make([]Link, 0, len(r.links))
	for _, l := range r.links {
		out = append(out, l)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ai, bi := out[i].endpoints()
		aj, bj := out[j].endpoints()
		if c := ai.Compare(aj); c != 0 {
			return c < 0
		}
		return bi.Less(bj)
	})
	return out
}

// Interfaces returns every interface taking part in a link, sorted.
func (r *Registry) Interfaces() []id.InterfaceID {
	r.mu.RLock()
	out := make([]id.InterfaceID, 0, len(r.refs))
	for i := range r.refs {
		out = append(out, i)
	}
	r.mu.RUnlock()

	id.SortInterfaces(out)
	return out
}
