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

// Package metrics instruments the reactor/Linkage/Server stack with Prometheus
// collectors (SPEC_FULL.md §11's domain-stack binding for
// github.com/prometheus/client_golang): live Linkages and timer-wheel
// occupancy per reactor slot, worker-pool queue depth per worker, frame sizes
// across every connection, and — for a caller that also runs a
// coroutine.Scheduler alongside the reactor stack — its live coroutine count.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns one private prometheus.Registry (never the global default
// registry, so a process can run more than one Server without collector name
// collisions) and the collectors every SPEC_FULL.md §11 metric needs.
type Registry struct {
	reg *prometheus.Registry

	liveLinkages     *prometheus.GaugeVec
	timerOccupancy   *prometheus.GaugeVec
	workerQueueDepth *prometheus.GaugeVec
	coroutinesLive   prometheus.Gauge
	frameSize        prometheus.Histogram
}

// NewRegistry builds and registers every collector.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.liveLinkages = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "flinter",
		Subsystem: "server",
		Name:      "live_linkages",
		Help:      "Number of attached Linkages currently owned by a reactor slot.",
	}, []string{"slot"})

	r.timerOccupancy = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "flinter",
		Subsystem: "reactor",
		Name:      "timer_wheel_occupancy",
		Help:      "Number of armed timers currently held by a reactor slot's timer wheel.",
	}, []string{"slot"})

	r.workerQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "flinter",
		Subsystem: "server",
		Name:      "worker_queue_depth",
		Help:      "Number of jobs currently queued on a worker-pool lane.",
	}, []string{"worker"})

	r.coroutinesLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flinter",
		Subsystem: "coroutine",
		Name:      "live_count",
		Help:      "Number of coroutines a Scheduler currently considers live (not yet dead).",
	})

	r.frameSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flinter",
		Subsystem: "server",
		Name:      "frame_size_bytes",
		Help:      "Size, header included, of every complete frame handed to on_message.",
		Buckets:   prometheus.ExponentialBuckets(64, 2, 16),
	})

	r.reg.MustRegister(r.liveLinkages, r.timerOccupancy, r.workerQueueDepth, r.coroutinesLive, r.frameSize)
	return r
}

// Handler serves this Registry's collectors for Prometheus to scrape.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func slotLabel(slot int) string { return strconv.Itoa(slot) }

func (r *Registry) IncLiveLinkages(slot int) { r.liveLinkages.WithLabelValues(slotLabel(slot)).Inc() }
func (r *Registry) DecLiveLinkages(slot int) { r.liveLinkages.WithLabelValues(slotLabel(slot)).Dec() }

func (r *Registry) SetTimerOccupancy(slot int, n int) {
	r.timerOccupancy.WithLabelValues(slotLabel(slot)).Set(float64(n))
}

func (r *Registry) SetWorkerQueueDepth(worker int, n int) {
	r.workerQueueDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(n))
}

// SetCoroutinesLive is meant to be sampled periodically by a caller that also
// runs a coroutine.Scheduler (coroutine.Scheduler.LiveCount()) — the scheduler
// is an independent subsystem from the reactor/Server stack, so Registry does
// not hold a reference to one itself.
func (r *Registry) SetCoroutinesLive(n int64) { r.coroutinesLive.Set(float64(n)) }

func (r *Registry) ObserveFrameSize(n int) { r.frameSize.Observe(float64(n)) }
