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
	"testing"

	"github.com/viniarck/kytos/internal/config"
)

func TestNewConfigBuilder(t *testing.T) {
	builder := NewConfigBuilder()
	if builder == nil {
		t.Fatal("NewConfigBuilder returned nil")
		return
	}
	if builder.config == nil {
		t.Fatal("ConfigBuilder.config is nil")
		return
	}
}

func TestConfigBuilderFluentAPI(t *testing.T) {
	cfg, err := NewConfigBuilder().
		WithListen("127.0.0.1:6633").
		WithAPIListen("").
		WithDebug(true).
		WithLogFile("/tmp/kytos.log", 5).
		WithBufferCapacity(16).
		WithMaxConnections(4).
		WithShutdownTimeout(2).
		Build()

	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if cfg.Listen != "127.0.0.1:6633" {
		t.Errorf("expected Listen=127.0.0.1:6633, got %s", cfg.Listen)
	}
	if cfg.APIListen != "" {
		t.Errorf("expected empty APIListen, got %s", cfg.APIListen)
	}
	if !cfg.Debug {
		t.Error("expected Debug=true")
	}
	if cfg.LogFile != "/tmp/kytos.log" || cfg.LogMaxSize != 5 {
		t.Errorf("unexpected log settings %s/%d", cfg.LogFile, cfg.LogMaxSize)
	}
	if cfg.BufferCapacity != 16 || cfg.MaxConnections != 4 || cfg.ShutdownTimeoutSec != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfigBuilderFromCopies(t *testing.T) {
	base := config.NewControllerConfig()
	cfg := From(base).WithBufferCapacity(9).MustBuild()

	if cfg.BufferCapacity != 9 {
		t.Errorf("expected BufferCapacity=9, got %d", cfg.BufferCapacity)
	}
	if base.BufferCapacity != 0 {
		t.Error("From() must not modify its argument")
	}
}

func TestConfigBuilderInvalidConfig(t *testing.T) {
	_, err := NewConfigBuilder().WithBufferCapacity(-1).Build()
	if err == nil {
		t.Error("Build() should return error for invalid config")
	}
}

func TestConfigBuilderMustBuildPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustBuild() should panic for invalid config")
		}
	}()

	NewConfigBuilder().WithListen("nowhere").MustBuild() // Should panic
}
