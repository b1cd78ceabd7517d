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

package builder

import (
	"github.com/viniarck/kytos/internal/config"
)

// ConfigBuilder provides a fluent interface for building controller configurations.
type ConfigBuilder struct {
	config *config.ControllerConfig
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: config.NewControllerConfig(),
	}
}

// From starts the builder from an existing configuration.
func From(cfg *config.ControllerConfig) *ConfigBuilder {
	if cfg == nil {
		return NewConfigBuilder()
	}
	c := *cfg
	return &ConfigBuilder{config: &c}
}

// WithListen sets the switch listener address.
func (b *ConfigBuilder) WithListen(addr string) *ConfigBuilder {
	b.config.Listen = addr
	return b
}

// WithAPIListen sets the HTTP API address. Empty disables the API.
func (b *ConfigBuilder) WithAPIListen(addr string) *ConfigBuilder {
	b.config.APIListen = addr
	return b
}

// WithDebug enables or disables debug mode.
func (b *ConfigBuilder) WithDebug(debug bool) *ConfigBuilder {
	b.config.Debug = debug
	return b
}

// WithLogFile enables the rotating log file.
func (b *ConfigBuilder) WithLogFile(path string, maxSizeMB int) *ConfigBuilder {
	b.config.LogFile = path
	if maxSizeMB > 0 {
		b.config.LogMaxSize = maxSizeMB
	}
	return b
}

// WithConnectionTimeout sets the connection timeout in seconds.
func (b *ConfigBuilder) WithConnectionTimeout(sec int) *ConfigBuilder {
	b.config.ConnectionTimeoutSec = sec
	return b
}

// WithBufferCapacity sets the soft capacity of every buffer.
func (b *ConfigBuilder) WithBufferCapacity(n int) *ConfigBuilder {
	b.config.BufferCapacity = n
	return b
}

// WithMaxConnections sets the concurrent connection limit.
func (b *ConfigBuilder) WithMaxConnections(n int) *ConfigBuilder {
	b.config.MaxConnections = n
	return b
}

// WithShutdownTimeout sets the flush timeout of Stop in seconds.
func (b *ConfigBuilder) WithShutdownTimeout(sec int) *ConfigBuilder {
	b.config.ShutdownTimeoutSec = sec
	return b
}

// Build validates and returns the built configuration.
func (b *ConfigBuilder) Build() (*config.ControllerConfig, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	return b.config, nil
}

// MustBuild builds the configuration and panics on error.
// Use this only when you are certain the configuration is valid.
func (b *ConfigBuilder) MustBuild() *config.ControllerConfig {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}
