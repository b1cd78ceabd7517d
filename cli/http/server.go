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

package http

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viniarck/kytos/internal/controller"
	"github.com/viniarck/kytos/internal/errors"
	"github.com/viniarck/kytos/internal/id"
	"github.com/viniarck/kytos/internal/topology"
)

// Backend is what the API reads from.
type Backend interface {
	Stats() controller.Status
	Connections() []controller.ConnectionInfo
	Topology() *topology.Registry
}

type HttpServer struct {
	backend  Backend
	gatherer prometheus.Gatherer
	ge       *gin.Engine
	srv      *http.Server
	addr     string
}

// NewHttpServer creates the API server. A nil gatherer disables /metrics.
func NewHttpServer(addr string, backend Backend, gatherer prometheus.Gatherer) *HttpServer {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	hs := &HttpServer{
		backend:  backend,
		gatherer: gatherer,
		ge:       r,
		addr:     addr,
	}
	hs.attach()
	hs.srv = &http.Server{Addr: addr, Handler: r}
	return hs
}

func (hs *HttpServer) attach() {
	api := hs.ge.Group("/api/kytos/core")
	api.GET("/status", hs.Status)
	api.GET("/connections", hs.Connections)
	api.GET("/links", hs.Links)
	api.GET("/links/:id", hs.Link)
	api.POST("/ids/interface", hs.InterfaceID)
	api.POST("/ids/link", hs.LinkID)

	if hs.gatherer != nil {
		hs.ge.GET("/metrics", gin.WrapH(promhttp.HandlerFor(hs.gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler returns the router, mostly for tests.
func (hs *HttpServer) Handler() http.Handler {
	return hs.ge
}

// Run serves until Shutdown is called.
func (hs *HttpServer) Run() error {
	if err := hs.srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for active requests until ctx ends.
func (hs *HttpServer) Shutdown(ctx context.Context) error {
	return hs.srv.Shutdown(ctx)
}

func (hs *HttpServer) Status(c *gin.Context) {
	c.JSON(http.StatusOK, ok(hs.backend.Stats()))
}

func (hs *HttpServer) Connections(c *gin.Context) {
	c.JSON(http.StatusOK, ok(hs.backend.Connections()))
}

func (hs *HttpServer) Links(c *gin.Context) {
	c.JSON(http.StatusOK, ok(hs.backend.Topology().Links()))
}

func (hs *HttpServer) Link(c *gin.Context) {
	lid, err := id.ParseLinkID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, fail(RespIdentifierMalformed, err))
		return
	}
	link, found := hs.backend.Topology().Link(lid)
	if !found {
		c.JSON(http.StatusNotFound, fail(RespErrorNotFound, errors.NewResourceNotFoundError("link "+lid.String())))
		return
	}
	c.JSON(http.StatusOK, ok(link))
}

type interfaceRequest struct {
	Switch string  `json:"switch" binding:"required"`
	Port   *uint32 `json:"port" binding:"required"`
}

type linkRequest struct {
	InterfaceA string `json:"interface_a" binding:"required"`
	InterfaceB string `json:"interface_b" binding:"required"`
}

type linkResponse struct {
	ID         string `json:"id"`
	InterfaceA string `json:"interface_a"`
	InterfaceB string `json:"interface_b"`
}

// InterfaceID returns the canonical identifier of a switch port.
func (hs *HttpServer) InterfaceID(c *gin.Context) {
	var req interfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(RespErrorInvalidRequest, err))
		return
	}
	iid := id.NewInterfaceID(req.Switch, *req.Port)
	c.JSON(http.StatusOK, ok(gin.H{"id": iid.String()}))
}

// LinkID returns the digest of the link between two interfaces.
func (hs *HttpServer) LinkID(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(RespErrorInvalidRequest, err))
		return
	}
	a, err := id.ParseInterfaceID(req.InterfaceA)
	if err != nil {
		c.JSON(http.StatusBadRequest, fail(RespIdentifierMalformed, err))
		return
	}
	b, err := id.ParseInterfaceID(req.InterfaceB)
	if err != nil {
		c.JSON(http.StatusBadRequest, fail(RespIdentifierMalformed, err))
		return
	}
	c.JSON(http.StatusOK, ok(linkResponse{
		ID:         id.NewLinkID(a, b).String(),
		InterfaceA: a.String(),
		InterfaceB: b.String(),
	}))
}
