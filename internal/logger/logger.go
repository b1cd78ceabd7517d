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
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger to provide a consistent logging interface.
type Logger struct {
	*zerolog.Logger
}

// New creates a new Logger instance writing human readable lines to out.
func New(out io.Writer, debug bool) *Logger {
	if out == nil {
		out = os.Stdout
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}

	return build(consoleWriter, debug)
}

// NewWithFile creates a Logger that writes to the console and to a rotating file.
// The console side keeps the human readable format, the file gets JSON lines.
func NewWithFile(out io.Writer, file io.Writer, debug bool) *Logger {
	if file == nil {
		return New(out, debug)
	}
	if out == nil {
		out = os.Stdout
	}

	multi := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339},
		file,
	)
	return build(multi, debug)
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	zlog := zerolog.Nop()
	return &Logger{&zlog}
}

func build(w io.Writer, debug bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	zlog := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{&zlog}
}

// WithComponent creates a child logger with a component field.
func (l *Logger) WithComponent(component string) *Logger {
	child := l.Logger.With().Str("component", component).Logger()
	return &Logger{&child}
}

// WithBuffer creates a child logger with a buffer field.
func (l *Logger) WithBuffer(name string) *Logger {
	child := l.Logger.With().Str("buffer", name).Logger()
	return &Logger{&child}
}

// WithStage creates a child logger with a stage field.
func (l *Logger) WithStage(stage string) *Logger {
	child := l.Logger.With().Str("stage", stage).Logger()
	return &Logger{&child}
}

// WithConnection creates a child logger with connection id and remote address fields.
func (l *Logger) WithConnection(id, remote string) *Logger {
	child := l.Logger.With().Str("connection", id).Str("remote", remote).Logger()
	return &Logger{&child}
}
