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
	stderrors "errors"
	"io"
	"net"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/logger"
)

// readChunkSize bounds a single read from a switch connection.
const readChunkSize = 64 * 1024

// connection is one accepted switch connection.
type connection struct {
	id      string
	conn    net.Conn
	remote  string
	logger  *logger.Logger
	created time.Time

	writeMu sync.Mutex
}

func newConnection(c net.Conn, log *logger.Logger) *connection {
	cid := uuid.NewString()
	remote := c.RemoteAddr().String()
	return &connection{
		id:      cid,
		conn:    c,
		remote:  remote,
		logger:  log.WithConnection(cid, remote),
		created: time.Now(),
	}
}

// write sends payload in full. Writes from several goroutines do not interleave.
func (c *connection) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(payload); err != nil {
		return errors.NewConnectionError(c.id, err)
	}
	return nil
}

// isIdle reports whether err is a read deadline expiry.
func isIdle(err error) bool {
	if stderrors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

// isClosed reports whether err means the peer or we closed the connection.
func isClosed(err error) bool {
	return stderrors.Is(err, io.EOF) || stderrors.Is(err, net.ErrClosed)
}

// ConnectionInfo describes an open connection.
type ConnectionInfo struct {
	ID      string    `json:"id"`
	Remote  string    `json:"remote"`
	Created time.Time `json:"created"`
}

// connections is the registry of open connections keyed by id.
type connections struct {
	mu    sync.Mutex
	conns map[string]*connection
}

func newConnections() *connections {
	return &connections{conns: make(map[string]*connection)}
}

func (r *connections) add(c *connection) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.id] = c
	return len(r.conns)
}

func (r *connections) remove(c *connection) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c.id)
	return len(r.conns)
}

func (r *connections) get(id string) (*connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	return c, ok
}

func (r *connections) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *connections) list() []ConnectionInfo {
	r.mu.Lock()
	out := make([]ConnectionInfo, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, ConnectionInfo{ID: c.id, Remote: c.remote, Created: c.created})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// closeAll closes every connection. The read loops then remove themselves.
func (r *connections) closeAll() error {
	r.mu.Lock()
	all := make([]*connection, 0, len(r.conns))
	for _, c := range r.conns {
		all = append(all, c)
	}
	r.mu.Unlock()

	var err error
	for _, c := range all {
		if cerr := c.conn.Close(); cerr != nil && !stderrors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, errors.NewConnectionError(c.id, cerr))
		}
	}
	return err
}
