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

package transport

import (
	"context"

	liberr "github.com/sabouaram/flinter/errors"
)

// PeerCertificate exposes the subset of peer certificate metadata the original
// surfaces once a TLS handshake completes. The plain variant never populates one.
type PeerCertificate struct {
	Subject string
	Issuer  string
	Serial  string
	Version int
	Cipher  uint16
}

// AbstractIo is the capability set Linkage drives: a transport that can be
// initialized, connected to a peer, read from and written to without blocking, and
// shut down. Exactly two variants exist: plain TCP (plain.go) and TLS (tls.go).
type AbstractIo interface {
	// Initialize returns the action the caller must perform immediately, the
	// action it should next expect, and the read/write interest to register.
	Initialize() (immediate Action, next Action, interest Interest, err liberr.Error)

	// Connect dials address. Only meaningful after Initialize returned
	// ActionConnect.
	Connect(ctx context.Context, address string) liberr.Error

	// Read attempts to fill buf without blocking. A StatusOK result may read
	// fewer bytes than len(buf); the caller loops until JAMMED/WANNA_*/CLOSED/ERROR.
	Read(buf []byte) (n int, status Status)

	// Write attempts to send buf without blocking. On partial success the
	// caller must retry with the unwritten suffix.
	Write(buf []byte) (n int, status Status)

	// Shutdown closes the underlying transport. Idempotent.
	Shutdown() liberr.Error

	// PeerCertificate returns peer certificate metadata once the TLS handshake
	// has completed, or nil for the plain variant or before handshake.
	PeerCertificate() *PeerCertificate
}
