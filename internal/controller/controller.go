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

// Package controller wires the event buffers to the switch listener and to
// the four stages that consume them.
//
//	connections -> raw -> msg_in -> msg_out -> connections
//	                            \-> app -> dispatcher
//
// Start opens the listener and starts the stages. Stop closes the listener,
// puts a sentinel on every buffer, and waits for the stages to drain them.
package controller

import (
	"context"
	stderrors "errors"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/viniarck/kytos/internal/buffer"
	"github.com/viniarck/kytos/internal/config"
	"github.com/viniarck/kytos/internal/domain"
	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/events"
	"github.com/viniarck/kytos/internal/logger"
	"github.com/viniarck/kytos/internal/topology"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRegisterer records buffer and stage metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Controller) { c.registerer = reg }
}

// WithDecoder replaces the PassThrough decoder of the raw stage.
func WithDecoder(d Decoder) Option {
	return func(c *Controller) { c.decoder = d }
}

// WithMessageHandler adds handlers to the msg_in stage, called in order.
func WithMessageHandler(h ...MessageHandler) Option {
	return func(c *Controller) { c.handlers = append(c.handlers, h...) }
}

// Controller is the event distribution core.
type Controller struct {
	cfg        *config.ControllerConfig
	logger     *logger.Logger
	registerer prometheus.Registerer
	decoder    Decoder
	handlers   []MessageHandler

	buffers    *buffer.Buffers
	dispatcher *events.Dispatcher
	topology   *topology.Registry
	conns      *connections
	metrics    *metrics

	mu       sync.Mutex
	started  bool
	stopped  bool
	listener net.Listener
	group    *errgroup.Group
	readers  sync.WaitGroup
}

// New creates a controller from a validated configuration.
func New(cfg *config.ControllerConfig, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeConfigMissing, "controller configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:     cfg,
		decoder: PassThrough,
		conns:   newConnections(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	if c.decoder == nil {
		c.decoder = PassThrough
	}

	bufOpts := []buffer.Option{
		buffer.WithLogger(c.logger),
		buffer.WithCapacity(cfg.BufferCapacity),
	}
	if c.registerer != nil {
		m, err := buffer.NewMetrics(c.registerer)
		if err != nil {
			return nil, err
		}
		bufOpts = append(bufOpts, buffer.WithMetrics(m))
	}
	c.buffers = buffer.New(bufOpts...)
	c.metrics = newMetrics(c.registerer)

	c.dispatcher = events.NewDispatcher(c.logger)
	c.topology = topology.NewRegistry()
	if err := c.dispatcher.Register(topology.NewHandler(c.topology, c.logger)); err != nil {
		return nil, err
	}

	c.logger = c.logger.WithComponent("controller")
	return c, nil
}

// Buffers returns the controller buffers.
func (c *Controller) Buffers() *buffer.Buffers { return c.buffers }

// Dispatcher returns the application event dispatcher.
func (c *Controller) Dispatcher() *events.Dispatcher { return c.dispatcher }

// Topology returns the link registry fed by topology events.
func (c *Controller) Topology() *topology.Registry { return c.topology }

// Addr returns the listener address, nil before Start.
func (c *Controller) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listener == nil {
		return nil
	}
	return c.listener.Addr()
}

// Start opens the switch listener and starts the stages. ctx only bounds
// opening the listener; use Stop to shut the controller down.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return errors.New(errors.ErrCodeStageStart, "controller already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", c.cfg.Listen)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStageStart, "failed to listen for switch connections", err).
			WithContext("listen", c.cfg.Listen)
	}
	ln = netutil.LimitListener(ln, c.cfg.MaxConnections)

	g := new(errgroup.Group)
	g.Go(func() error { return c.runStage(stageRaw, c.buffers.Raw, c.processRaw) })
	g.Go(func() error { return c.runStage(stageMsgIn, c.buffers.MsgIn, c.processMsgIn) })
	g.Go(func() error { return c.runStage(stageMsgOut, c.buffers.MsgOut, c.processMsgOut) })
	g.Go(func() error { return c.runStage(stageApp, c.buffers.App, c.processApp) })
	g.Go(func() error { return c.serve(ln) })

	c.listener = ln
	c.group = g
	c.started = true

	c.logger.Info().
		Str("listen", ln.Addr().String()).
		Int("max_connections", c.cfg.MaxConnections).
		Msg("Controller started")
	return nil
}

// Stop shuts the controller down and waits, at most shutdown_timeout, for
// the stages to drain every buffer. Calling Stop again is a no-op.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started || c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	ln, g := c.listener, c.group
	c.mu.Unlock()

	c.logger.Info().Msg("Stopping controller")

	var err error
	if cerr := ln.Close(); cerr != nil && !stderrors.Is(cerr, net.ErrClosed) {
		err = multierr.Append(err, errors.Wrap(errors.ErrCodeStageStop, "failed to close listener", cerr))
	}
	if berr := c.buffers.BroadcastShutdown(); berr != nil {
		err = multierr.Append(err, berr)
	}

	wctx, cancel := context.WithTimeout(ctx, c.cfg.ShutdownTimeout())
	defer cancel()

	err = multierr.Append(err, waitFor(wctx, "stages", g.Wait))
	for _, b := range c.buffers.All() {
		b := b
		err = multierr.Append(err, waitFor(wctx, "buffer "+b.Name(), func() error {
			b.DrainBarrier()
			return nil
		}))
	}

	err = multierr.Append(err, c.conns.closeAll())
	err = multierr.Append(err, waitFor(wctx, "connections", func() error {
		c.readers.Wait()
		return nil
	}))
	err = multierr.Append(err, waitFor(wctx, "dispatcher", c.dispatcher.Close))

	if err != nil {
		c.logger.Error().Err(err).Msg("Controller stopped with errors")
		return err
	}
	c.logger.Info().Msg("Controller stopped")
	return nil
}

// waitFor runs fn and gives up with a shutdown timeout error when ctx ends
// first. fn keeps running in the background in that case.
func waitFor(ctx context.Context, step string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.NewShutdownTimeoutError(step, ctx.Err())
	}
}

// Publish queues an application event.
func (c *Controller) Publish(event domain.Event) error {
	return c.buffers.App.Put(event)
}

// Connections returns the open connections, oldest first.
func (c *Controller) Connections() []ConnectionInfo {
	return c.conns.list()
}

// Status is a snapshot of the controller.
type Status struct {
	Running     bool          `json:"running"`
	Listen      string        `json:"listen"`
	Connections int           `json:"connections"`
	Links       int           `json:"links"`
	Handlers    int           `json:"handlers"`
	Buffers     []buffer.Stat `json:"buffers"`
}

// Stats returns the current status.
func (c *Controller) Stats() Status {
	c.mu.Lock()
	running := c.started && !c.stopped
	listen := c.cfg.Listen
	if c.listener != nil {
		listen = c.listener.Addr().String()
	}
	c.mu.Unlock()

	return Status{
		Running:     running,
		Listen:      listen,
		Connections: c.conns.len(),
		Links:       c.topology.Len(),
		Handlers:    c.dispatcher.HandlerCount(),
		Buffers:     c.buffers.Stats(),
	}
}

// serve accepts switch connections until the listener is closed.
func (c *Controller) serve(ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if stderrors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if stderrors.As(err, &ne) && ne.Timeout() {
				c.logger.Warn().Err(err).Msg("Temporary accept error")
				time.Sleep(5 * time.Millisecond)
				continue
			}
			return errors.Wrap(errors.ErrCodeConnection, "failed to accept switch connection", err)
		}
		if !c.trackReader() {
			_ = nc.Close()
			return nil
		}
		go c.handleConn(nc)
	}
}

// trackReader registers a connection reader unless Stop has begun, so no
// reader is added once Stop may be waiting on them.
func (c *Controller) trackReader() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	c.readers.Add(1)
	return true
}

// handleConn reads from nc until it closes or stays idle for longer than
// the connection timeout. Every chunk read becomes a raw event.
func (c *Controller) handleConn(nc net.Conn) {
	defer c.readers.Done()

	conn := newConnection(nc, c.logger)
	c.metrics.connections.Set(float64(c.conns.add(conn)))
	conn.logger.Info().Msg("New connection")
	c.publish(events.NewAppEvent(events.NameConnectionNew, map[string]any{
		events.ContentConnectionID:  conn.id,
		events.ContentRemoteAddress: conn.remote,
	}))

	defer func() {
		c.metrics.connections.Set(float64(c.conns.remove(conn)))
		_ = nc.Close()
		conn.logger.Info().Msg("Connection lost")
		c.publish(events.NewAppEvent(events.NameConnectionLost, map[string]any{
			events.ContentConnectionID:  conn.id,
			events.ContentRemoteAddress: conn.remote,
		}))
	}()

	timeout := c.cfg.ConnectionTimeout()
	buf := make([]byte, readChunkSize)
	for {
		if err := nc.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			conn.logger.Debug().Err(err).Msg("Failed to set read deadline")
			return
		}
		n, err := nc.Read(buf)
		if n > 0 {
			payload := make([]byte, n)
			copy(payload, buf[:n])
			if perr := c.buffers.Raw.Put(events.NewRawEvent(conn.id, payload)); perr != nil {
				conn.logger.Error().Err(perr).Msg("Failed to queue raw event")
				return
			}
		}
		if err != nil {
			switch {
			case isIdle(err):
				conn.logger.Info().Dur("timeout", timeout).Msg("Connection idle, closing")
			case isClosed(err):
				conn.logger.Debug().Msg("Connection closed")
			default:
				conn.logger.Warn().Err(err).Msg("Connection read failed")
			}
			return
		}
	}
}

func (c *Controller) publish(event domain.Event) {
	if err := c.Publish(event); err != nil {
		c.logger.Error().Err(err).Str("event", event.Name()).Msg("Failed to publish event")
	}
}
