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

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"uwheel/internal/shard"
	"uwheel/pkg/aggregator"
	"uwheel/pkg/uwheel"
)

func newTestServer() *Server {
	group := shard.NewWheelGroup[uint32, uint32, uint32, uint32](
		aggregator.Sum[uint32]{}, []string{"a", "b", "c"}, 0, uwheel.DefaultOptions())
	return NewServer(group)
}

func TestServerInsertAdvanceIntervalFlow(t *testing.T) {
	srv := newTestServer()
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()
	client := ts.Client()

	resp, err := client.Get(ts.URL + "/insert?key=device-1&value=3&ts_ms=0")
	if err != nil {
		t.Fatalf("/insert: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/advance?watermark_ms=1000")
	if err != nil {
		t.Fatalf("/advance: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/interval?key=device-1&range_ms=1000")
	if err != nil {
		t.Fatalf("/interval: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "3" {
		t.Fatalf("interval body = %q, want %q", body, "3")
	}
}

func TestServerGroupLandmarkEndpoint(t *testing.T) {
	srv := newTestServer()
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()
	client := ts.Client()

	client.Get(ts.URL + "/insert?key=device-1&value=3&ts_ms=0")
	client.Get(ts.URL + "/insert?key=device-2&value=4&ts_ms=0")
	client.Get(ts.URL + "/advance?watermark_ms=1000")

	resp, err := client.Get(ts.URL + "/group-landmark")
	if err != nil {
		t.Fatalf("/group-landmark: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	n := string(body)
	if n != "7" {
		t.Fatalf("group-landmark body = %q, want %q", n, "7")
	}
}

func TestServerLandmarkEndpointScopedToKey(t *testing.T) {
	srv := newTestServer()
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()
	client := ts.Client()

	client.Get(ts.URL + "/insert?key=device-1&value=3&ts_ms=0")
	client.Get(ts.URL + "/insert?key=device-2&value=4&ts_ms=0")
	client.Get(ts.URL + "/advance?watermark_ms=1000")

	resp, err := client.Get(ts.URL + "/landmark?key=device-1")
	if err != nil {
		t.Fatalf("/landmark: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "3" {
		t.Fatalf("landmark body = %q, want %q", body, "3")
	}
}

func TestServerLandmarkMissingKey(t *testing.T) {
	srv := newTestServer()
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/landmark")
	if err != nil {
		t.Fatalf("/landmark: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServerInsertMissingKey(t *testing.T) {
	srv := newTestServer()
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/insert?value=1&ts_ms=0")
	if err != nil {
		t.Fatalf("/insert: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServerIntervalNotFound(t *testing.T) {
	srv := newTestServer()
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/interval?key=never-seen&range_ms=1000")
	if err != nil {
		t.Fatalf("/interval: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
