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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	backupTimeFormat = "2006-01-02T15-04-05.000"
	defaultMaxSizeMB = 100
)

var _ io.WriteCloser = (*RotatingFile)(nil)

var (
	// currentTime exists so it can be mocked out by tests.
	currentTime = time.Now

	// megabyte is a variable so tests can rotate without writing megabytes.
	megabyte int64 = 1024 * 1024
)

// RotatingFile is an io.WriteCloser appending to Filename.
//
// The file is opened lazily on first Write. When a write would push it past
// MaxSize megabytes the current file is renamed to name-<timestamp>.ext and a
// fresh file is created under the original name. Only one process may write
// to a given Filename.
type RotatingFile struct {
	Filename string
	// MaxSize in megabytes, defaults to 100.
	MaxSize int

	size int64
	file *os.File
	mu   sync.Mutex
}

// NewRotatingFile returns a RotatingFile for filename.
func NewRotatingFile(filename string, maxSizeMB int) *RotatingFile {
	return &RotatingFile{Filename: filename, MaxSize: maxSizeMB}
}

// Write implements io.Writer.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	writeLen := int64(len(p))
	if writeLen > r.max() {
		return 0, fmt.Errorf("write length %d exceeds maximum file size %d", writeLen, r.max())
	}

	if r.file == nil {
		if err := r.openExistingOrNew(writeLen); err != nil {
			return 0, err
		}
	}

	if r.size+writeLen > r.max() {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close implements io.Closer.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.close()
}

// Rotate forces a rotation, e.g. on SIGHUP.
func (r *RotatingFile) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotate()
}

func (r *RotatingFile) close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *RotatingFile) rotate() error {
	if err := r.close(); err != nil {
		return err
	}
	return r.openNew()
}

// openNew moves any existing file aside and creates an empty one.
func (r *RotatingFile) openNew() error {
	if err := os.MkdirAll(filepath.Dir(r.Filename), 0755); err != nil {
		return fmt.Errorf("can't make directories for new logfile: %w", err)
	}

	mode := os.FileMode(0600)
	if info, err := os.Stat(r.Filename); err == nil {
		mode = info.Mode()
		if err := os.Rename(r.Filename, backupName(r.Filename)); err != nil {
			return fmt.Errorf("can't rename log file: %w", err)
		}
	}

	f, err := os.OpenFile(r.Filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("can't open new logfile: %w", err)
	}
	r.file = f
	r.size = 0
	return nil
}

func (r *RotatingFile) openExistingOrNew(writeLen int64) error {
	info, err := os.Stat(r.Filename)
	if os.IsNotExist(err) {
		return r.openNew()
	}
	if err != nil {
		return fmt.Errorf("error getting log file info: %w", err)
	}

	if info.Size()+writeLen > r.max() {
		return r.rotate()
	}

	f, err := os.OpenFile(r.Filename, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return r.openNew()
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *RotatingFile) max() int64 {
	if r.MaxSize <= 0 {
		return defaultMaxSizeMB * megabyte
	}
	return int64(r.MaxSize) * megabyte
}

// backupName inserts a UTC timestamp between the file name and its extension.
func backupName(name string) string {
	dir := filepath.Dir(name)
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	prefix := base[:len(base)-len(ext)]
	ts := currentTime().UTC().Format(backupTimeFormat)
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", prefix, ts, ext))
}
