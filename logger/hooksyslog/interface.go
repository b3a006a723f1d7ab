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

// Package hooksyslog provides a logrus hook that writes log entries to a local or
// remote syslog daemon.
//
// The connection is dialed once at construction time. Formatting, field filtering and
// the Run/IsRunning lifecycle are delegated to logger/hookwriter; this package only owns
// the syslog connection and closes it on Close().
package hooksyslog

import (
	"log/syslog"

	logcfg "github.com/sabouaram/flinter/logger/config"
	loghkw "github.com/sabouaram/flinter/logger/hookwriter"
	logtps "github.com/sabouaram/flinter/logger/types"
	"github.com/sirupsen/logrus"
)

// HookSyslog is a logrus hook that writes log entries to a syslog daemon.
type HookSyslog interface {
	logtps.Hook
}

type hookSyslog struct {
	loghkw.HookWriter
	w *syslog.Writer
}

// Close closes the underlying syslog connection, in addition to the wrapped
// hookwriter's own (no-op) Close.
func (o *hookSyslog) Close() error {
	_ = o.HookWriter.Close()

	if o.w == nil {
		return nil
	}

	return o.w.Close()
}

// New creates a new HookSyslog instance for writing logrus entries to the syslog
// daemon described by opt.
//
// If opt.Network and opt.Host are both empty, the local syslog daemon is used.
func New(opt logcfg.OptionsSyslog, f logrus.Formatter) (HookSyslog, error) {
	var (
		prio = facility(opt.Facility) | syslog.LOG_INFO
		addr string
		net  string
	)

	if opt.Host != "" {
		net = opt.Network
		addr = opt.Host
	}

	w, err := syslog.Dial(net, addr, prio, opt.Tag)
	if err != nil {
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

	hook, err := loghkw.New(w, std, lvls, f)
	if err != nil {
		_ = w.Close()
		return nil, err
	} else if hook == nil {
		_ = w.Close()
		return nil, nil
	}

	return &hookSyslog{HookWriter: hook, w: w}, nil
}

// facility maps the configured facility name to its syslog.Priority value. Unknown or
// empty names fall back to LOG_LOCAL0.
func facility(name string) syslog.Priority {
	switch name {
	case "kern":
		return syslog.LOG_KERN
	case "user":
		return syslog.LOG_USER
	case "mail":
		return syslog.LOG_MAIL
	case "daemon":
		return syslog.LOG_DAEMON
	case "auth":
		return syslog.LOG_AUTH
	case "syslog":
		return syslog.LOG_SYSLOG
	case "lpr":
		return syslog.LOG_LPR
	case "news":
		return syslog.LOG_NEWS
	case "uucp":
		return syslog.LOG_UUCP
	case "cron":
		return syslog.LOG_CRON
	case "authpriv":
		return syslog.LOG_AUTHPRIV
	case "ftp":
		return syslog.LOG_FTP
	case "local0":
		return syslog.LOG_LOCAL0
	case "local1":
		return syslog.LOG_LOCAL1
	case "local2":
		return syslog.LOG_LOCAL2
	case "local3":
		return syslog.LOG_LOCAL3
	case "local4":
		return syslog.LOG_LOCAL4
	case "local5":
		return syslog.LOG_LOCAL5
	case "local6":
		return syslog.LOG_LOCAL6
	case "local7":
		return syslog.LOG_LOCAL7
	default:
		return syslog.LOG_LOCAL0
	}
}
