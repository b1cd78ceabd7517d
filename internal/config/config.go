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

package config

import (
	"encoding/json"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/viniarck/kytos/internal/errors"
)

// Default values.
const (
	DefaultListen            = "0.0.0.0:6653"
	DefaultAPIListen         = "127.0.0.1:8181"
	DefaultLogMaxSize        = 100
	DefaultConnectionTimeout = 130
	DefaultFloodTimeout      = 100000
	DefaultMaxConnections    = 1024
	DefaultShutdownTimeout   = 10

	// MinConnectionTimeout is the floor applied by ConnectionTimeout, in seconds.
	MinConnectionTimeout = 70
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "KYTOS_"

// ControllerConfig is the controller configuration document.
type ControllerConfig struct {
	Listen               string `json:"listen"`
	APIListen            string `json:"api_listen"`
	Debug                bool   `json:"debug"`
	LogFile              string `json:"log_file"`
	LogMaxSize           int    `json:"log_max_size"`
	ConnectionTimeoutSec int    `json:"connection_timeout"`
	FloodTimeoutUsec     int    `json:"flood_timeout"`
	BufferCapacity       int    `json:"buffer_capacity"`
	MaxConnections       int    `json:"max_connections"`
	ShutdownTimeoutSec   int    `json:"shutdown_timeout"`
}

// NewControllerConfig creates a ControllerConfig with default values.
func NewControllerConfig() *ControllerConfig {
	return &ControllerConfig{
		Listen:               DefaultListen,
		APIListen:            DefaultAPIListen,
		Debug:                false,
		LogFile:              "",
		LogMaxSize:           DefaultLogMaxSize,
		ConnectionTimeoutSec: DefaultConnectionTimeout,
		FloodTimeoutUsec:     DefaultFloodTimeout,
		BufferCapacity:       0,
		MaxConnections:       DefaultMaxConnections,
		ShutdownTimeoutSec:   DefaultShutdownTimeout,
	}
}

// Load reads a JSON configuration file on top of the defaults.
// An empty path returns the defaults.
func Load(path string) (*ControllerConfig, error) {
	cfg := NewControllerConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigMissing, "configuration file not found").
				WithContext("path", path)
		}
		return nil, errors.NewConfigurationError("failed to read configuration file", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigurationError("failed to parse configuration file", err).
			WithContext("path", path)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are left alone.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return errors.NewConfigurationError("failed to load env file", err).WithContext("path", path)
	}
	return nil
}

// ApplyEnv overrides fields from KYTOS_* environment variables, e.g.
// KYTOS_LISTEN or KYTOS_BUFFER_CAPACITY.
func (c *ControllerConfig) ApplyEnv() error {
	strs := map[string]*string{
		"LISTEN":     &c.Listen,
		"API_LISTEN": &c.APIListen,
		"LOG_FILE":   &c.LogFile,
	}
	for key, dst := range strs {
		if v, ok := lookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"LOG_MAX_SIZE":       &c.LogMaxSize,
		"CONNECTION_TIMEOUT": &c.ConnectionTimeoutSec,
		"FLOOD_TIMEOUT":      &c.FloodTimeoutUsec,
		"BUFFER_CAPACITY":    &c.BufferCapacity,
		"MAX_CONNECTIONS":    &c.MaxConnections,
		"SHUTDOWN_TIMEOUT":   &c.ShutdownTimeoutSec,
	}
	for key, dst := range ints {
		v, ok := lookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewConfigurationError("invalid integer in "+EnvPrefix+key, err)
		}
		*dst = n
	}

	if v, ok := lookupEnv("DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewConfigurationError("invalid boolean in "+EnvPrefix+"DEBUG", err)
		}
		c.Debug = b
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Validate checks if the configuration is valid.
func (c *ControllerConfig) Validate() error {
	if err := validateAddr("listen", c.Listen); err != nil {
		return err
	}
	if c.APIListen != "" {
		if err := validateAddr("api_listen", c.APIListen); err != nil {
			return err
		}
	}
	if c.LogMaxSize <= 0 {
		return errors.NewConfigValidationError("log_max_size", "must be positive, got "+strconv.Itoa(c.LogMaxSize))
	}
	if c.ConnectionTimeoutSec < 0 {
		return errors.NewConfigValidationError("connection_timeout", "must not be negative")
	}
	if c.FloodTimeoutUsec < 0 {
		return errors.NewConfigValidationError("flood_timeout", "must not be negative")
	}
	if c.BufferCapacity < 0 {
		return errors.NewConfigValidationError("buffer_capacity", "must not be negative")
	}
	if c.MaxConnections <= 0 {
		return errors.NewConfigValidationError("max_connections", "must be positive, got "+strconv.Itoa(c.MaxConnections))
	}
	if c.ShutdownTimeoutSec <= 0 {
		return errors.NewConfigValidationError("shutdown_timeout", "must be positive, got "+strconv.Itoa(c.ShutdownTimeoutSec))
	}
	return nil
}

func validateAddr(field, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.NewConfigValidationError(field, err.Error())
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return errors.NewConfigValidationError(field, "invalid port "+strconv.Quote(port))
	}
	return nil
}

// ConnectionTimeout returns the idle timeout of a switch connection.
// Values below MinConnectionTimeout seconds are raised to it.
func (c *ControllerConfig) ConnectionTimeout() time.Duration {
	sec := c.ConnectionTimeoutSec
	if sec < MinConnectionTimeout {
		sec = MinConnectionTimeout
	}
	return time.Duration(sec) * time.Second
}

// FloodTimeout returns the flood timeout.
func (c *ControllerConfig) FloodTimeout() time.Duration {
	return time.Duration(c.FloodTimeoutUsec) * time.Microsecond
}

// ShutdownTimeout returns how long Stop waits for the buffers to flush.
func (c *ControllerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// Bytes serializes the configuration to JSON.
func (c *ControllerConfig) Bytes() []byte {
	b, err := json.Marshal(c)
	if err != nil {
		return []byte{}
	}
	return b
}
