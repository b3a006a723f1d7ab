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

package server

import "sync/atomic"

// Channel is the opaque 64-bit handle a Server hands out for every incoming or
// outgoing connection (spec.md §3 "Channel (server-level id)"). Bit 63 marks an
// outgoing channel; the remaining bits encode the owning slot via a stable
// modulus, so routing a cross-thread Send/Disconnect never needs a lookup
// table keyed by channel — just channel mod slotCount.
type Channel uint64

const channelOutgoingBit = uint64(1) << 63

// InvalidChannel is never returned by an allocator; it is the zero value and
// signals "no channel" the way a nil pointer would.
const InvalidChannel Channel = 0

// IsOutgoing reports whether ch was allocated by Connect rather than accepted
// by a Listener.
func (c Channel) IsOutgoing() bool {
	return uint64(c)&channelOutgoingBit != 0
}

// Slot returns the reactor slot that owns ch for its entire lifetime, stable
// across reconnects (spec.md §3 invariant).
func (c Channel) Slot(slotCount int) int {
	return int((uint64(c) &^ channelOutgoingBit) % uint64(slotCount))
}

// channelAllocator hands out channels for one reactor slot: the next value is
// always prev+slotCount, seeded at the slot index, so every allocation from
// this slot already satisfies Channel.Slot(slotCount) == slot (spec.md §4.6
// "Channel allocation"). Built on sync/atomic directly rather than the
// project's generic atomic.Value[T] wrapper: allocation is a pure
// increment-and-return, and Value[T] has no Add operation to build that on.
type channelAllocator struct {
	next      atomic.Uint64
	slotCount uint64
}

func newChannelAllocator(slot, slotCount int) *channelAllocator {
	a := &channelAllocator{slotCount: uint64(slotCount)}
	a.next.Store(uint64(slot))
	return a
}

func (a *channelAllocator) allocate(outgoing bool) Channel {
	v := a.next.Add(a.slotCount)
	if outgoing {
		v |= channelOutgoingBit
	}
	return Channel(v)
}
