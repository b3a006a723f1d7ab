/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
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

package config

import "github.com/sabouaram/flinter/duration"

// OptionsServer are the Server-wide tunables from spec.md §6 ("Server
// tunables"): Initialize(slots, workers) plus the four direction timeouts
// (Server-level defaults are shorter than Linkage's own, and override on
// attach) and the incoming-connection bound.
type OptionsServer struct {
	Slots   int `mapstructure:"slots" json:"slots" yaml:"slots" toml:"slots"`
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers" toml:"workers"`

	ReceiveTimeout duration.Duration `mapstructure:"receiveTimeout" json:"receiveTimeout" yaml:"receiveTimeout" toml:"receiveTimeout"`
	ConnectTimeout duration.Duration `mapstructure:"connectTimeout" json:"connectTimeout" yaml:"connectTimeout" toml:"connectTimeout"`
	SendTimeout    duration.Duration `mapstructure:"sendTimeout" json:"sendTimeout" yaml:"sendTimeout" toml:"sendTimeout"`
	IdleTimeout    duration.Duration `mapstructure:"idleTimeout" json:"idleTimeout" yaml:"idleTimeout" toml:"idleTimeout"`

	MaximumIncomingConnections int64 `mapstructure:"maximumIncomingConnections" json:"maximumIncomingConnections" yaml:"maximumIncomingConnections" toml:"maximumIncomingConnections"`

	// MinimumFileDescriptors, when positive, is the open-file limit Initialize
	// attempts to raise the process soft limit to before starting any reactor
	// slot. 0 skips the check entirely.
	MinimumFileDescriptors int `mapstructure:"minimumFileDescriptors" json:"minimumFileDescriptors" yaml:"minimumFileDescriptors" toml:"minimumFileDescriptors"`
}

// DefaultOptionsServer matches spec.md §6's Server-layer defaults: 5s/5s/5s/60s,
// shorter than Linkage's own 15s/15s/15s/300s since the Server overrides on attach.
func DefaultOptionsServer(slots int) OptionsServer {
	return OptionsServer{
		Slots:                      slots,
		Workers:                    0,
		ReceiveTimeout:             duration.Seconds(5),
		ConnectTimeout:             duration.Seconds(5),
		SendTimeout:                duration.Seconds(5),
		IdleTimeout:                duration.Seconds(60),
		MaximumIncomingConnections: 0, // 0 = unbounded
		MinimumFileDescriptors:     0, // 0 = do not touch the process limit
	}
}

func (o OptionsServer) Clone() OptionsServer {
	return o
}
