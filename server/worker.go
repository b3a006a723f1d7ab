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
	"fmt"
	"sync"

	"github.com/sabouaram/flinter/linkage"
)

// job is one complete frame handed off to a worker (spec.md §4.6 "Job dispatch
// (worker pool)").
type job struct {
	hash    int
	frame   []byte
	lk      *linkage.Linkage
	handler linkage.Handler
	thread  *reactorThread
}

// workerPool runs Handler.OnMessage off the reactor goroutine when a Server is
// initialized with workers > 0. hash < 0 (the default) means any worker may
// take the job, fed through the global FIFO; hash >= 0 routes to a fixed lane
// so frames that hash the same stay in order on the same worker (spec.md §5
// ordering guarantee).
type workerPool struct {
	workers int
	global  chan job
	lanes   []chan job
	wg      sync.WaitGroup
}

func newWorkerPool(workers int) *workerPool {
	p := &workerPool{
		workers: workers,
		global:  make(chan job, 1024),
		lanes:   make([]chan job, workers),
	}
	for i := range p.lanes {
		p.lanes[i] = make(chan job, 256)
	}
	return p
}

func (p *workerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

// run gives the worker's own lane priority over the global FIFO (spec.md §4.6
// "per-worker queue has priority"): it is drained by non-blocking first, then
// the worker blocks on both.
func (p *workerPool) run(idx int) {
	defer p.wg.Done()
	lane := p.lanes[idx]
	for {
		select {
		case j, ok := <-lane:
			if !ok {
				return
			}
			p.process(j)
			continue
		default:
		}

		select {
		case j, ok := <-lane:
			if !ok {
				return
			}
			p.process(j)
		case j, ok := <-p.global:
			if !ok {
				return
			}
			p.process(j)
		}
	}
}

func (p *workerPool) process(j job) {
	result := j.handler.OnMessage(j.lk, j.frame)
	switch {
	case result < 0:
		j.thread.r.Post(func() {
			j.handler.OnError(j.lk, true, fmt.Errorf("worker: handler rejected frame"))
			j.lk.Disconnect(false)
		})
	case result == 0:
		j.thread.r.Post(func() {
			j.lk.Disconnect(true)
		})
	}
}

func (p *workerPool) submit(j job) {
	if j.hash >= 0 && p.workers > 0 {
		p.lanes[j.hash%p.workers] <- j
		return
	}
	p.global <- j
}

func (p *workerPool) stop() {
	close(p.global)
	for _, lane := range p.lanes {
		close(lane)
	}
	p.wg.Wait()
}

// workerHandler wraps a connection's real Handler so every full frame becomes
// a job instead of running inline on the reactor goroutine. It always tells
// the Linkage to continue (1); the worker's actual OnMessage result is applied
// asynchronously via job.thread.r.Post once the worker finishes.
type workerHandler struct {
	linkage.Handler
	pool   *workerPool
	thread *reactorThread
}

func (w *workerHandler) OnMessage(l *linkage.Linkage, frame []byte) int {
	cp := make([]byte, len(frame))
	copy(cp, frame)
	w.pool.submit(job{
		hash:    w.Handler.HashMessage(cp),
		frame:   cp,
		lk:      l,
		handler: w.Handler,
		thread:  w.thread,
	})
	return 1
}
