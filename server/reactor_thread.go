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

import (
	"context"

	libctx "github.com/sabouaram/flinter/context"
	liberr "github.com/sabouaram/flinter/errors"
	"github.com/sabouaram/flinter/linkage"
	liblog "github.com/sabouaram/flinter/logger"
	"github.com/sabouaram/flinter/reactor"
)

// reactorThread is the Go expression of the original's LinkageWorker
// (_examples/original_source/flinter/linkage/linkage_worker.cpp): one reactor
// plus the slot-local bookkeeping around it (channel table, outgoing routes,
// channel allocator), wrapped with a start/stop lifecycle. spec.md folds this
// into "Server... reactor pool" without naming it; SPEC_FULL.md §12
// reintroduces the name since it is purely the Go shape of that bullet.
type reactorThread struct {
	slot   int
	r      *reactor.Reactor
	alloc  *channelAllocator
	chans  libctx.Config[Channel] // Channel -> *linkage.Linkage
	routes libctx.Config[Channel] // Channel -> *outgoingInfo
	cancel context.CancelFunc
}

func newReactorThread(slot, slotCount int, log liblog.Logger) *reactorThread {
	return &reactorThread{
		slot:   slot,
		r:      reactor.New(log, nil),
		alloc:  newChannelAllocator(slot, slotCount),
		chans:  libctx.New[Channel](nil),
		routes: libctx.New[Channel](nil),
	}
}

func (t *reactorThread) start(ctx context.Context, tuner Tuner) liberr.Error {
	cctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	if !tuner.OnInitialize(t.slot) {
		cancel()
		return ErrorThreadInitFailed.Error(nil)
	}

	if e := t.r.Start(cctx); e != nil {
		cancel()
		return e
	}

	tuner.OnThreadStart(t.slot)
	return nil
}

func (t *reactorThread) stop(tuner Tuner) {
	t.chans.Walk(func(_ Channel, val interface{}) bool {
		if lk, ok := val.(*linkage.Linkage); ok {
			lk.Disconnect(false)
		}
		return true
	})
	_ = t.r.Stop()
	if t.cancel != nil {
		t.cancel()
	}
	tuner.OnThreadFinished(t.slot)
}

func (t *reactorThread) register(ch Channel, lk *linkage.Linkage) {
	t.chans.Store(ch, lk)
}

func (t *reactorThread) unregister(ch Channel) {
	t.chans.Delete(ch)
}

func (t *reactorThread) linkage(ch Channel) (*linkage.Linkage, bool) {
	v, ok := t.chans.Load(ch)
	if !ok {
		return nil, false
	}
	lk, ok := v.(*linkage.Linkage)
	return lk, ok
}

func (t *reactorThread) setRoute(ch Channel, info *outgoingInfo) {
	t.routes.Store(ch, info)
}

func (t *reactorThread) route(ch Channel) (*outgoingInfo, bool) {
	v, ok := t.routes.Load(ch)
	if !ok {
		return nil, false
	}
	info, ok := v.(*outgoingInfo)
	return info, ok
}

func (t *reactorThread) clearRoute(ch Channel) {
	t.routes.Delete(ch)
}
