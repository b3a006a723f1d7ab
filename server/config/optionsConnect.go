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
)

// OptionsConnect configures one Server.Connect call (spec.md §6 "Connect
// configuration. Same shape as Listener plus a thread_id hint (-1 = random)").
type OptionsConnect struct {
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`

	// TLS, when non-nil, dials with TLS using ServerName for SNI/verification.
	TLS        *libcrt.Config `mapstructure:"tls" json:"tls,omitempty" yaml:"tls,omitempty" toml:"tls,omitempty"`
	ServerName string         `mapstructure:"serverName" json:"serverName,omitempty" yaml:"serverName,omitempty" toml:"serverName,omitempty"`

	// ThreadID pins the channel to one reactor slot; -1 means round-robin.
	ThreadID int `mapstructure:"threadId" json:"threadId" yaml:"threadId" toml:"threadId"`
}

func DefaultOptionsConnect(address string) OptionsConnect {
	return OptionsConnect{Address: address, ThreadID: -1}
}

func (o OptionsConnect) Clone() OptionsConnect {
	return o
}
