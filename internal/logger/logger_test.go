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

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info line missing: %q", out)
	}

	buf.Reset()
	New(&buf, true).Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug line missing in debug mode: %q", buf.String())
	}
}

func TestChildFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true).WithComponent("buffers").WithBuffer("raw_event").WithStage("raw")
	log.Info().Msg("hello")

	out := buf.String()
	// ConsoleWriter colorizes keys, so only look for keys and values separately.
	for _, want := range []string{"component", "buffers", "buffer", "raw_event", "stage"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	// Must not panic and must not write anywhere.
	log.Info().Msg("nothing")
	log.WithBuffer("app_event").Debug().Msg("nothing")
}

func TestNewWithFileWritesJSON(t *testing.T) {
	dir := t.TempDir()
	rf := NewRotatingFile(filepath.Join(dir, "kytos.log"), 1)
	defer rf.Close()

	var console bytes.Buffer
	log := NewWithFile(&console, rf, false)
	log.Info().Str("buffer", "app_event").Msg("to both")

	data, err := os.ReadFile(rf.Filename)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"buffer":"app_event"`) {
		t.Errorf("expected JSON field in file, got %q", data)
	}
	if !strings.Contains(console.String(), "to both") {
		t.Errorf("expected console output, got %q", console.String())
	}
}

func TestRotatingFileRotates(t *testing.T) {
	oldMB, oldTime := megabyte, currentTime
	megabyte = 1
	currentTime = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	defer func() { megabyte, currentTime = oldMB, oldTime }()

	dir := t.TempDir()
	name := filepath.Join(dir, "kytos.log")
	rf := NewRotatingFile(name, 10)
	defer rf.Close()

	if _, err := rf.Write([]byte("12345678")); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if _, err := rf.Write([]byte("abcdef")); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	backup := filepath.Join(dir, "kytos-2024-01-02T03-04-05.000.log")
	old, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	if string(old) != "12345678" {
		t.Errorf("backup content = %q", old)
	}
	cur, _ := os.ReadFile(name)
	if string(cur) != "abcdef" {
		t.Errorf("current content = %q", cur)
	}

	if _, err := rf.Write([]byte("this line is too long")); err == nil {
		t.Error("expected error for oversized write")
	}
}
