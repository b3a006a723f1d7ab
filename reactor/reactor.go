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

// Package reactor implements a single-goroutine-per-instance event loop: a bounded
// timer wheel, a command mailbox any goroutine may post to, and a periodic health
// check, all driven from one ticker so every Runnable it invokes runs serialized on
// the reactor's own goroutine.
package reactor

import (
	"context"
	"sync"
	"time"

	libatm "github.com/sabouaram/flinter/atomic"
	libdur "github.com/sabouaram/flinter/duration"
	liberr "github.com/sabouaram/flinter/errors"
	liblog "github.com/sabouaram/flinter/logger"
)

// healthCheckPeriod is how often the reactor evaluates its own liveness hook.
const healthCheckPeriod = time.Second

// HealthCheck is invoked once per healthCheckPeriod on the reactor's own goroutine.
type HealthCheck func()

// Reactor runs one event loop per instance: a single goroutine that advances a
// 60-second timer wheel one millisecond at a time, drains posted commands, and fires
// an optional health check every second.
type Reactor struct {
	mtx      sync.Mutex
	wheel    *timerWheel
	queue    *commandQueue
	health   HealthCheck
	log      liblog.Logger
	running  libatm.Value[bool]
	cancel   context.CancelFunc
	done     chan struct{}
	attached map[uint64]func()
	nextAttk uint64
}

// New builds an idle Reactor. Call Start to begin driving its loop.
func New(log liblog.Logger, health HealthCheck) *Reactor {
	r := &Reactor{
		wheel:    newTimerWheel(0),
		queue:    newCommandQueue(),
		health:   health,
		log:      log,
		done:     make(chan struct{}),
		attached: make(map[uint64]func()),
	}
	r.running = libatm.NewValue[bool]()
	return r
}

// Start launches the reactor's loop goroutine. Calling Start on an already-running
// Reactor returns ErrorAlreadyRunning.
func (r *Reactor) Start(ctx context.Context) liberr.Error {
	r.mtx.Lock()
	if r.running.Load() {
		r.mtx.Unlock()
		return ErrorAlreadyRunning.Error(nil)
	}
	r.running.Store(true)
	r.done = make(chan struct{})
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mtx.Unlock()

	go r.run(ctx)
	return nil
}

// Stop signals the loop goroutine to exit and blocks until it has, releasing every
// still-armed timer.
func (r *Reactor) Stop() liberr.Error {
	r.mtx.Lock()
	if !r.running.Load() {
		r.mtx.Unlock()
		return ErrorNotRunning.Error(nil)
	}
	cancel := r.cancel
	done := r.done
	r.mtx.Unlock()

	cancel()
	<-done
	return nil
}

// Post enqueues fn to run on the reactor's own goroutine. Safe to call from any
// goroutine, including from within a Runnable already executing on the reactor.
func (r *Reactor) Post(fn Runnable) {
	r.queue.push(fn)
}

// Attach registers poll to be invoked once per tick (every millisecond) on the
// reactor's own goroutine, standing in for the "dispatch to on_readable/on_writable"
// step of an fd-based event loop since AbstractIo exposes readiness as a
// non-blocking probe rather than a raw descriptor the reactor can wait on. It
// returns a token to later pass to Detach. Safe to call from any goroutine.
func (r *Reactor) Attach(poll func()) uint64 {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.nextAttk++
	token := r.nextAttk
	r.attached[token] = poll
	return token
}

// Detach removes a poll function previously registered with Attach. A no-op if
// the token is unknown.
func (r *Reactor) Detach(token uint64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	delete(r.attached, token)
}

// ArmTimer schedules fn to run once delay from now, on the reactor's own goroutine.
// delay must be shorter than the wheel's 60-second horizon; a longer (or equal)
// delay returns ErrorTimerHorizon.
func (r *Reactor) ArmTimer(delay libdur.Duration, fn Runnable) (uint64, liberr.Error) {
	ms := delay.Time().Milliseconds()
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.wheel.insert(ms, 0, fn)
}

// ArmInterval schedules fn to run every period, starting period from now, on the
// reactor's own goroutine, until CancelTimer is called with the returned id.
func (r *Reactor) ArmInterval(period libdur.Duration, fn Runnable) (uint64, liberr.Error) {
	ms := period.Time().Milliseconds()
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.wheel.insert(ms, period, fn)
}

// CancelTimer disarms a still-pending timer or interval. A no-op if it already fired
// or was never registered.
func (r *Reactor) CancelTimer(id uint64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.wheel.cancel(id)
}

// run is the reactor's single goroutine: a 1ms ticker drains the command queue,
// advances the timer wheel, and invokes the health check once per second.
func (r *Reactor) run(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	lastHealth := time.Now()

	defer func() {
		r.mtx.Lock()
		r.wheel.releaseAll()
		r.running.Store(false)
		close(r.done)
		r.mtx.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mtx.Lock()
			polls := make([]func(), 0, len(r.attached))
			for _, fn := range r.attached {
				polls = append(polls, fn)
			}
			r.mtx.Unlock()
			for _, fn := range polls {
				r.invoke(fn)
			}

			for _, cmd := range r.queue.drain() {
				r.invoke(cmd)
			}

			r.mtx.Lock()
			fired := r.wheel.advance(1)
			r.mtx.Unlock()

			for _, e := range fired {
				r.invoke(e.fn)
				if e.period > 0 {
					ms := e.period.Time().Milliseconds()
					r.mtx.Lock()
					_, _ = r.wheel.insert(ms, e.period, e.fn)
					r.mtx.Unlock()
				}
			}

			if r.health != nil && time.Since(lastHealth) >= healthCheckPeriod {
				lastHealth = time.Now()
				r.invoke(r.health)
			}
		}
	}
}

// invoke runs fn, recovering a panic into a log entry so one faulty command or timer
// cannot take down the whole reactor.
func (r *Reactor) invoke(fn func()) {
	defer func() {
		if rec := recover(); rec != nil && r.log != nil {
			r.log.Error("reactor: recovered panic", rec)
		}
	}()
	fn()
}

// IsRunning reports whether the reactor's loop goroutine is currently active.
func (r *Reactor) IsRunning() bool {
	return r.running.Load()
}
