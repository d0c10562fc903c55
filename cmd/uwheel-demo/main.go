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

// Package main provides the entry point for the uwheel demo application.
//
// This application is a concrete, runnable demonstration of the core
// uwheel library (pkg/uwheel). It shards a keyspace of counters across
// a WheelGroup, accepts inserts and watermark advances over HTTP, and
// answers interval/landmark queries against the hierarchical wheel —
// all without ever touching a database on the hot path.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"uwheel/internal/api"
	"uwheel/internal/metrics"
	"uwheel/internal/shard"
	"uwheel/pkg/aggregator"
	"uwheel/pkg/uwheel"
)

func main() {
	httpAddr := flag.String("http_addr", ":8080", "HTTP listen address (e.g., :8080)")
	metricsAddr := flag.String("metrics_addr", "", "If non-empty, expose Prometheus /metrics on this address (e.g., :9090)")
	shardsFlag := flag.String("shards", "shard-0,shard-1,shard-2,shard-3", "Comma-separated fixed shard names for rendezvous routing")
	writeAheadCap := flag.Int("write_ahead_capacity", 64, "Write-ahead wheel capacity in seconds")
	drillDown := flag.Bool("drill_down", false, "Enable drill-down breakdowns on every wheel level")
	watermarkMs := flag.Int64("initial_watermark_ms", 0, "Initial watermark, in epoch milliseconds")
	flag.Parse()

	shardNames := strings.Split(*shardsFlag, ",")

	if *metricsAddr != "" {
		metrics.Enable()
		metrics.StartEndpoint(*metricsAddr)
	}

	opts := uwheel.Options{DrillDown: *drillDown, WriteAheadCapacity: *writeAheadCap}
	group := shard.NewWheelGroup[uint32, uint32, uint32, uint32](
		aggregator.Sum[uint32]{}, shardNames, *watermarkMs, opts)

	apiServer := api.NewServer(group)
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	// Expose a shard-count convenience route here in main since it's a
	// demo-only affordance, not part of the library's HTTP surface.
	mux.HandleFunc("/shards", func(w http.ResponseWriter, r *http.Request) {
		n := 0
		group.ForEach(func(string, *uwheel.Wheel[uint32, uint32, uint32, uint32]) { n++ })
		metrics.SetShardsTracked(n)
		fmt.Fprintf(w, "%d", n)
	})

	httpServer := &http.Server{
		Addr:         *httpAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("uwheel demo API server listening on %s (shards=%v)\n", *httpAddr, shardNames)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v\n", *httpAddr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	fmt.Println("\nShutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	fmt.Println("Server gracefully stopped.")
}
