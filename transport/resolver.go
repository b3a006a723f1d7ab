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
	"net"
	"strconv"

	liberr "github.com/sabouaram/flinter/errors"
)

// Resolver turns a network/address pair into the ordered set of addresses a caller
// should attempt to dial, in priority order. The default implementation performs a
// fresh lookup on every call; it intentionally does not cache (host resolver caching
// is an external collaborator's concern, not this package's).
type Resolver interface {
	Resolve(ctx context.Context, network, address string) ([]net.Addr, liberr.Error)
}

type systemResolver struct {
	inner *net.Resolver
}

// NewResolver returns the default Resolver, backed by the standard library's
// resolver with no additional caching layer.
func NewResolver() Resolver {
	return &systemResolver{inner: net.DefaultResolver}
}

func (r *systemResolver) Resolve(ctx context.Context, network, address string) ([]net.Addr, liberr.Error) {
	host, port, e := net.SplitHostPort(address)
	if e != nil {
		return nil, ErrorResolveFailed.Error(e)
	}

	ips, e := r.inner.LookupIP(ctx, resolverNetwork(network), host)
	if e != nil {
		return nil, ErrorResolveFailed.Error(e)
	}
	if len(ips) == 0 {
		return nil, ErrorNoAddress.Error(nil)
	}

	p, e := strconv.Atoi(port)
	if e != nil {
		return nil, ErrorResolveFailed.Error(e)
	}

	out := make([]net.Addr, 0, len(ips))
	for _, ip := range ips {
		out = append(out, &net.TCPAddr{IP: ip, Port: p})
	}
	return out, nil
}

// resolverNetwork maps a dial network ("tcp", "tcp4", "tcp6") to the LookupIP
// network selector ("ip", "ip4", "ip6").
func resolverNetwork(network string) string {
	switch network {
	case "tcp4":
		return "ip4"
	case "tcp6":
		return "ip6"
	default:
		return "ip"
	}
}

