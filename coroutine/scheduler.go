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

package coroutine

import (
	"sync"

	libatm "github.com/sabouaram/flinter/atomic"
	liblog "github.com/sabouaram/flinter/logger"
)

// Scheduler is a per-thread coroutine registry and call-stack. A Scheduler must not
// be shared by more than one goroutine driving Resume/Yield at a time: the spec's
// "exactly one coroutine is RUNNING per scheduler" invariant is enforced by the
// scheduler's own mutex, not by OS-thread affinity.
type Scheduler struct {
	mtx       sync.Mutex
	table     []*coroutine
	free      []int
	callStack []int
	liveCount libatm.Value[int64]
	returnCh  chan struct{}
	log       liblog.Logger
}

// NewScheduler opens a new per-thread scheduler. Calling this more than once for the
// same logical thread and using both concurrently is a bug, exactly as in the
// original (the contract is the caller's responsibility, not enforced here).
func NewScheduler(log liblog.Logger) *Scheduler {
	s := &Scheduler{
		table:     make([]*coroutine, 0, initialTableCapacity),
		callStack: []int{rootID},
		returnCh:  make(chan struct{}),
		log:       log,
	}
	s.liveCount = libatm.NewValue[int64]()
	return s
}

// New allocates a new coroutine bound to entry/ud and returns its id. Ids are dense
// and reused only after the slot's previous occupant reaches StatusDead.
func (s *Scheduler) New(entry Entry, ud any) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var id int
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		id = len(s.table)
		s.table = append(s.table, nil)
	}

	s.table[id] = &coroutine{
		id:       id,
		status:   StatusReady,
		entry:    entry,
		ud:       ud,
		resumeCh: make(chan struct{}),
	}

	s.liveCount.Store(s.liveCount.Load() + 1)
	return id
}

// Status returns the coroutine's current state, or StatusDead if the id was never
// allocated or has already terminated.
func (s *Scheduler) Status(id int) Status {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if id < 0 || id >= len(s.table) || s.table[id] == nil {
		return StatusDead
	}
	return s.table[id].status
}

// Running returns the id of the coroutine currently holding the scheduler, or -1
// ("none") when only the root context is active.
func (s *Scheduler) Running() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.callStack[len(s.callStack)-1]
}

// Resume transitions id from Ready/Suspend to Running and blocks the caller until the
// coroutine yields or terminates. Resuming an unknown, dead or already-running id is
// a no-op (resuming a running id additionally returns ErrAlreadyRunning).
func (s *Scheduler) Resume(id int) error {
	s.mtx.Lock()
	if id < 0 || id >= len(s.table) || s.table[id] == nil {
		s.mtx.Unlock()
		return nil
	}

	c := s.table[id]
	if c.status == StatusRunning {
		s.mtx.Unlock()
		if s.log != nil {
			s.log.Warning("resume called on a running coroutine", id)
		}
		return ErrAlreadyRunning
	}
	if c.status == StatusDead {
		s.mtx.Unlock()
		return nil
	}

	c.status = StatusRunning
	s.callStack = append(s.callStack, id)

	first := !c.started
	c.started = true
	s.mtx.Unlock()

	if first {
		go s.run(c)
	} else {
		c.resumeCh <- struct{}{}
	}

	<-s.returnCh

	s.mtx.Lock()
	s.callStack = s.callStack[:len(s.callStack)-1]
	s.mtx.Unlock()

	return nil
}

// run is the entry trampoline: it invokes the user entry function once, then marks
// the coroutine dead and frees its slot, mirroring the original's "on natural return
// it marks the coroutine DEAD, frees its slot, decrements live_count" contract.
func (s *Scheduler) run(c *coroutine) {
	c.entry(s, c.ud)

	s.mtx.Lock()
	c.status = StatusDead
	s.table[c.id] = nil
	s.free = append(s.free, c.id)
	s.mtx.Unlock()

	s.liveCount.Store(s.liveCount.Load() - 1)
	if s.log != nil {
		s.log.Debug("coroutine terminated", c.id)
	}
	s.returnCh <- struct{}{}
}

// Yield suspends the calling coroutine and transfers control back to whichever
// context most recently resumed it. Calling Yield from the root context (no
// coroutine currently running on this scheduler) is a programmer error.
func (s *Scheduler) Yield() error {
	s.mtx.Lock()
	id := s.callStack[len(s.callStack)-1]
	if id == rootID {
		s.mtx.Unlock()
		return ErrNotRunning
	}
	c := s.table[id]
	c.status = StatusSuspend
	s.mtx.Unlock()

	s.returnCh <- struct{}{}
	<-c.resumeCh

	s.mtx.Lock()
	c.status = StatusRunning
	s.mtx.Unlock()
	return nil
}

// LiveCount returns the number of non-dead coroutines currently registered.
func (s *Scheduler) LiveCount() int64 {
	return s.liveCount.Load()
}

// Close tears down every non-dead coroutine's bookkeeping. As in the original, a
// coroutine that held external resources is responsible for releasing them before
// its entry function returns or is abandoned; Close does not run abandoned entry
// functions to completion.
func (s *Scheduler) Close() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for i, c := range s.table {
		if c != nil {
			c.status = StatusDead
			s.table[i] = nil
		}
	}
	s.liveCount.Store(0)
}
