/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package hookfile provides a logrus hook that writes log entries to a file.
//
// The file is opened (and its parent path created, if configured) once at construction
// time. Formatting, field filtering and the Run/IsRunning lifecycle are delegated to
// logger/hookwriter; this package only owns the file handle and closes it on Close().
package hookfile

import (
	"io"
	"os"

	libiot "github.com/sabouaram/flinter/ioutils"
	logcfg "github.com/sabouaram/flinter/logger/config"
	loghkw "github.com/sabouaram/flinter/logger/hookwriter"
	logtps "github.com/sabouaram/flinter/logger/types"
	"github.com/sirupsen/logrus"
)

// HookFile is a logrus hook that writes log entries to a file on disk.
type HookFile interface {
	logtps.Hook
}

type hookFile struct {
	loghkw.HookWriter
	h *os.File
}

// Close flushes and closes the underlying file, in addition to the wrapped
// hookwriter's own (no-op) Close.
func (o *hookFile) Close() error {
	_ = o.HookWriter.Close()

	if o.h == nil {
		return nil
	}

	_ = o.h.Sync()
	return o.h.Close()
}

// New creates a new HookFile instance for writing logrus entries to the configured file.
//
// If opt.Create is set, the file is opened with O_CREATE; if opt.CreatePath is set, the
// parent directory is created first via ioutils.PathCheckCreate.
func New(opt logcfg.OptionsFile, f logrus.Formatter) (HookFile, error) {
	if opt.Filepath == "" {
		return nil, os.ErrInvalid
	}

	var (
		fileMode = os.FileMode(opt.FileMode)
		pathMode = os.FileMode(opt.PathMode)
		flags    = os.O_WRONLY | os.O_APPEND
	)

	if fileMode == 0 {
		fileMode = 0644
	}

	if pathMode == 0 {
		pathMode = 0755
	}

	if opt.Create {
		flags |= os.O_CREATE

		if opt.CreatePath {
			if err := libiot.PathCheckCreate(true, opt.Filepath, fileMode, pathMode); err != nil {
				return nil, err
			}
		}
	}

	h, err := os.OpenFile(opt.Filepath, flags, fileMode)
	if err != nil {
		return nil, err
	}

	if _, err = h.Seek(0, io.SeekEnd); err != nil {
		_ = h.Close()
		return nil, err
	}

	std := &logcfg.OptionsStd{
		DisableStack:     opt.DisableStack,
		DisableTimestamp: opt.DisableTimestamp,
		EnableTrace:      opt.EnableTrace,
		EnableAccessLog:  opt.EnableAccessLog,
		DisableColor:     true,
	}

	var lvls []logrus.Level
	for _, l := range opt.LogLevel {
		if lvl, e := logrus.ParseLevel(l); e == nil {
			lvls = append(lvls, lvl)
		}
	}

	hook, err := loghkw.New(h, std, lvls, f)
	if err != nil {
		_ = h.Close()
		return nil, err
	} else if hook == nil {
		_ = h.Close()
		return nil, nil
	}

	return &hookFile{HookWriter: hook, h: h}, nil
}
