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

import (
	libcrt "github.com/sabouaram/flinter/certificates"
	"github.com/sabouaram/flinter/duration"
)

// OptionsListener configures one Server.Listen call (spec.md §6 "Listener
// configuration"). Tags mirror logger/config's per-concern file layout so the
// same mapstructure-based decoder that loads logger/config.Options can load
// this struct from a config file section.
type OptionsListener struct {
	Network string `mapstructure:"network" json:"network" yaml:"network" toml:"network"`
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`

	ReuseAddr   bool              `mapstructure:"reuseAddr" json:"reuseAddr" yaml:"reuseAddr" toml:"reuseAddr"`
	KeepAlive   duration.Duration `mapstructure:"keepAlive" json:"keepAlive" yaml:"keepAlive" toml:"keepAlive"`
	NoDelay     bool              `mapstructure:"noDelay" json:"noDelay" yaml:"noDelay" toml:"noDelay"`
	DeferAccept bool              `mapstructure:"deferAccept" json:"deferAccept" yaml:"deferAccept" toml:"deferAccept"`

	// TLS, when non-nil, terminates TLS on every accepted connection.
	TLS *libcrt.Config `mapstructure:"tls" json:"tls,omitempty" yaml:"tls,omitempty" toml:"tls,omitempty"`

	// ThreadID pins the listener to one reactor slot; -1 means the Server picks
	// one (round-robin).
	ThreadID int `mapstructure:"threadId" json:"threadId" yaml:"threadId" toml:"threadId"`
}

// DefaultOptionsListener mirrors listener.DefaultOptions' socket defaults.
func DefaultOptionsListener(network, address string) OptionsListener {
	return OptionsListener{
		Network:   network,
		Address:   address,
		ReuseAddr: true,
		KeepAlive: duration.Seconds(60),
		NoDelay:   true,
		ThreadID:  -1,
	}
}

func (o OptionsListener) Clone() OptionsListener {
	return o
}
