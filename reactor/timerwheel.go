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

package reactor

import (
	libdur "github.com/sabouaram/flinter/duration"
	liberr "github.com/sabouaram/flinter/errors"
)

// wheelBuckets and wheelResolution give the timer wheel a 60-second horizon at
// 1ms resolution, matching the original's bounded wheel.
const (
	wheelBuckets    = 60000
	wheelResolution = libdur.Duration(1e6) // 1ms, expressed in duration.Duration (ns units)
)

// Runnable is a unit of work executed inside the reactor's own goroutine, either as
// a fired timer or a queued command.
type Runnable func()

// timerEntry is one armed timer.
type timerEntry struct {
	id     uint64
	fn     Runnable
	period libdur.Duration
	bucket int
}

// timerWheel buckets timers by millisecond offset from an origin instant, advancing
// and firing due buckets as the reactor's clock moves forward.
type timerWheel struct {
	buckets [wheelBuckets][]*timerEntry
	origin  int64 // ms
	cursor  int64 // ms elapsed since origin
	nextID  uint64
	byID    map[uint64]*timerEntry
}

func newTimerWheel(nowMs int64) *timerWheel {
	return &timerWheel{
		origin: nowMs,
		byID:   make(map[uint64]*timerEntry),
	}
}

// insert arms a timer to fire delayMs from now (wheel-relative), rejecting delays
// beyond the wheel's horizon.
func (w *timerWheel) insert(delayMs int64, period libdur.Duration, fn Runnable) (uint64, liberr.Error) {
	if delayMs < 0 {
		delayMs = 0
	}
	if delayMs >= wheelBuckets {
		return 0, ErrorTimerHorizon.Error(nil)
	}

	bucket := int((w.cursor + delayMs) % wheelBuckets)

	w.nextID++
	e := &timerEntry{
		id:     w.nextID,
		fn:     fn,
		period: period,
		bucket: bucket,
	}

	w.buckets[bucket] = append(w.buckets[bucket], e)
	w.byID[e.id] = e
	return e.id, nil
}

// cancel removes a still-armed timer. A no-op if the id already fired or was never
// registered.
func (w *timerWheel) cancel(id uint64) {
	e, ok := w.byID[id]
	if !ok {
		return
	}
	delete(w.byID, id)

	list := w.buckets[e.bucket]
	for i, c := range list {
		if c.id == id {
			w.buckets[e.bucket] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// advance moves the wheel forward by elapsedMs, draining and returning every timer
// due to fire, in bucket order. Timers with a non-zero period are the caller's
// responsibility to re-insert (done by reactor.run).
func (w *timerWheel) advance(elapsedMs int64) []*timerEntry {
	var fired []*timerEntry

	for i := int64(0); i < elapsedMs && i < wheelBuckets; i++ {
		bucket := int((w.cursor + i) % wheelBuckets)
		list := w.buckets[bucket]
		if len(list) == 0 {
			continue
		}
		fired = append(fired, list...)
		for _, e := range list {
			delete(w.byID, e.id)
		}
		w.buckets[bucket] = nil
	}

	w.cursor += elapsedMs
	return fired
}

// releaseAll drops every armed timer without firing it, used on shutdown after the
// quit latch trips.
func (w *timerWheel) releaseAll() {
	for i := range w.buckets {
		w.buckets[i] = nil
	}
	w.byID = make(map[uint64]*timerEntry)
}
