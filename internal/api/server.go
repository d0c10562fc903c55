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

// Package api implements the public-facing HTTP server for the uwheel
// demo. It handles incoming requests, feeds them into a sharded group
// of wheels, and returns interval/landmark query results.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"uwheel/internal/metrics"
	"uwheel/internal/shard"
	"uwheel/pkg/uwheel"
	"uwheel/pkg/waw"
)

// Server exposes a sharded uint32-Sum WheelGroup over HTTP. Every demo
// key aggregates a simple uint32 counter (e.g. requests, bytes, events)
// summed over time — the simplest aggregator that exercises every
// wheel operation, matching how the library's own tests exercise it.
type Server struct {
	group *shard.WheelGroup[uint32, uint32, uint32, uint32]
}

// NewServer wraps an already-constructed WheelGroup.
func NewServer(group *shard.WheelGroup[uint32, uint32, uint32, uint32]) *Server {
	return &Server{group: group}
}

// RegisterRoutes sets up the HTTP routes for the server on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/insert", s.handleInsert)
	mux.HandleFunc("/advance", s.handleAdvance)
	mux.HandleFunc("/interval", s.handleInterval)
	mux.HandleFunc("/landmark", s.handleLandmark)
	mux.HandleFunc("/group-landmark", s.handleGroupLandmark)
}

// handleInsert accepts ?key=<shard key>&value=<uint32>&ts_ms=<int64>.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}
	value, err := strconv.ParseUint(r.URL.Query().Get("value"), 10, 32)
	if err != nil {
		http.Error(w, "value must be a uint32", http.StatusBadRequest)
		return
	}
	tsMs, err := strconv.ParseInt(r.URL.Query().Get("ts_ms"), 10, 64)
	if err != nil {
		http.Error(w, "ts_ms must be an int64", http.StatusBadRequest)
		return
	}

	err = s.group.Insert(key, uwheel.Entry[uint32]{Data: uint32(value), TimestampMs: tsMs})
	if err != nil {
		var overflow *waw.OverflowError[uint32]
		if errors.As(err, &overflow) {
			metrics.ObserveOverflow()
		} else {
			metrics.ObserveLate()
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	metrics.ObserveInsert()
	w.WriteHeader(http.StatusNoContent)
}

// handleAdvance accepts ?watermark_ms=<int64> and advances every
// constructed shard to that watermark.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	watermarkMs, err := strconv.ParseInt(r.URL.Query().Get("watermark_ms"), 10, 64)
	if err != nil {
		http.Error(w, "watermark_ms must be an int64", http.StatusBadRequest)
		return
	}
	s.group.AdvanceAll(watermarkMs)
	w.WriteHeader(http.StatusNoContent)
}

// handleInterval accepts ?key=<shard key>&range_ms=<int64> and returns
// the lowered aggregate over the trailing window ending at the
// shard's current watermark.
func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}
	rangeMs, err := strconv.ParseInt(r.URL.Query().Get("range_ms"), 10, 64)
	if err != nil {
		http.Error(w, "range_ms must be an int64", http.StatusBadRequest)
		return
	}

	start := time.Now()
	got, ok := s.group.Interval(key, time.Duration(rangeMs)*time.Millisecond)
	metrics.ObserveIntervalQuery(time.Since(start))
	if !ok {
		http.Error(w, "no data for interval", http.StatusNotFound)
		return
	}
	fmt.Fprintf(w, "%d", got)
}

// handleLandmark accepts ?key=<shard key> and returns the landmark
// (sum since the shard's last full-cycle clear) of the single shard
// owning that key.
func (s *Server) handleLandmark(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}
	got, ok := s.group.Landmark(key)
	if !ok {
		http.Error(w, "no data yet", http.StatusNotFound)
		return
	}
	fmt.Fprintf(w, "%d", got)
}

// handleGroupLandmark returns the group-wide landmark (sum across
// every constructed shard's landmark).
func (s *Server) handleGroupLandmark(w http.ResponseWriter, r *http.Request) {
	got, ok := s.group.GroupLandmark()
	if !ok {
		http.Error(w, "no data yet", http.StatusNotFound)
		return
	}
	fmt.Fprintf(w, "%d", got)
}

// ListenAndServe starts the HTTP server on the specified address.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	fmt.Printf("uwheel demo API server listening on %s\n", addr)
	return httpServer.ListenAndServe()
}
