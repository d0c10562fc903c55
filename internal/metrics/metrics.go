// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics instruments a running Wheel with Prometheus
// counters and gauges. All exported functions are no-ops until
// Enable is called, so they are safe to sprinkle on hot paths.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var enabled atomic.Bool

var (
	insertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uwheel_inserts_total",
		Help: "Total entries successfully accepted by the write-ahead wheel",
	})
	lateTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uwheel_late_total",
		Help: "Total entries rejected for landing behind the watermark",
	})
	overflowTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uwheel_overflow_total",
		Help: "Total entries rejected for landing beyond the write-ahead horizon",
	})
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uwheel_ticks_total",
		Help: "Total one-second ticks processed by the seconds wheel",
	})
	rotationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uwheel_rotations_total",
		Help: "Total full-rotation roll-ups, by granularity",
	}, []string{"granularity"})
	windowEmitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uwheel_window_emits_total",
		Help: "Total window partials emitted by a window engine",
	})
	intervalQueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "uwheel_interval_query_duration_seconds",
		Help:    "Wall-clock duration of Interval/Landmark queries",
		Buckets: prometheus.DefBuckets,
	})
	shardsTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uwheel_shards_tracked",
		Help: "Number of shard wheels currently constructed in a WheelGroup",
	})
)

func init() {
	prometheus.MustRegister(
		insertsTotal, lateTotal, overflowTotal, ticksTotal,
		rotationsTotal, windowEmitsTotal, intervalQueryDuration, shardsTracked,
	)
}

// Enable turns instrumentation on. Disabled by default so embedding
// this package costs nothing until a host opts in.
func Enable() { enabled.Store(true) }

// Disable turns instrumentation back off.
func Disable() { enabled.Store(false) }

// Enabled reports whether instrumentation is active.
func Enabled() bool { return enabled.Load() }

// ObserveInsert records an accepted insert.
func ObserveInsert() {
	if !enabled.Load() {
		return
	}
	insertsTotal.Inc()
}

// ObserveLate records a Late-rejected insert.
func ObserveLate() {
	if !enabled.Load() {
		return
	}
	lateTotal.Inc()
}

// ObserveOverflow records an Overflow-rejected insert.
func ObserveOverflow() {
	if !enabled.Load() {
		return
	}
	overflowTotal.Inc()
}

// ObserveTick records one second-granularity tick.
func ObserveTick() {
	if !enabled.Load() {
		return
	}
	ticksTotal.Inc()
}

// ObserveRotation records a completed rotation at the given
// granularity ("seconds", "minutes", "hours", "days", "weeks", "years").
func ObserveRotation(granularity string) {
	if !enabled.Load() {
		return
	}
	rotationsTotal.WithLabelValues(granularity).Inc()
}

// ObserveWindowEmit records one emitted window partial.
func ObserveWindowEmit() {
	if !enabled.Load() {
		return
	}
	windowEmitsTotal.Inc()
}

// ObserveIntervalQuery records the wall-clock cost of an Interval or
// Landmark query.
func ObserveIntervalQuery(d time.Duration) {
	if !enabled.Load() {
		return
	}
	intervalQueryDuration.Observe(d.Seconds())
}

// SetShardsTracked reports the current number of constructed shard
// wheels in a WheelGroup.
func SetShardsTracked(n int) {
	if !enabled.Load() {
		return
	}
	shardsTracked.Set(float64(n))
}

// StartEndpoint serves /metrics on addr in a background goroutine.
func StartEndpoint(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
}
