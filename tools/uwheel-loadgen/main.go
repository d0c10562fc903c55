// uwheel-loadgen is a tiny, dependency-free HTTP load generator tailored
// for the uwheel demo server. It reuses HTTP connections (keep-alive)
// and supports concurrency so demo scripts run fast without relying on
// external tools.
//
// Modes:
//   - single: insert repeatedly for a single key, advancing the group's
//     watermark every -advance_every requests
//   - zipf:   approximate 80/20 skew (hot/cold) without PRNG: send the
//     hot key 4/5 of the time
//
// Usage examples:
//
//	uwheel-loadgen -base=http://127.0.0.1:8080 -mode=single -key=device-1 -n=5000 -c=16
//	uwheel-loadgen -base=http://127.0.0.1:8080 -mode=zipf -hot_key=hot-1 -cold_keys=50 -n=8000 -c=16
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type modeType string

const (
	modeSingle modeType = "single"
	modeZipf   modeType = "zipf"
)

func main() {
	var (
		base        = flag.String("base", "http://127.0.0.1:8080", "Base URL including scheme and host, e.g. http://127.0.0.1:8080")
		modeS       = flag.String("mode", string(modeSingle), "Mode: single|zipf")
		key         = flag.String("key", "device-1", "Key for single mode")
		hotKey      = flag.String("hot_key", "hot-1", "Hot key for zipf mode")
		coldN       = flag.Int("cold_keys", 50, "Number of cold keys to round-robin in zipf mode")
		N           = flag.Int("n", 5000, "Total insert requests to send")
		conc        = flag.Int("c", 8, "Number of concurrent workers")
		hotEvery    = flag.Int("hot_every", 5, "Zipf-like skew period (all but 1 of every this-many requests go to hot; minimum 2)")
		advanceStep = flag.Int64("advance_step_ms", 1000, "Milliseconds to advance the watermark by")
		advanceEach = flag.Int("advance_every", 100, "Advance the watermark every N requests (0 disables)")
		timeout     = flag.Duration("timeout", 20*time.Second, "Overall timeout for the loadgen run")
		connIdle    = flag.Duration("idle_timeout", 30*time.Second, "HTTP idle connection timeout")
		maxIdle     = flag.Int("max_idle", 256, "Max idle connections total")
		maxIdlePer  = flag.Int("max_idle_per_host", 256, "Max idle connections per host")
	)
	flag.Parse()

	m := modeType(strings.ToLower(*modeS))
	if m != modeSingle && m != modeZipf {
		fmt.Fprintf(os.Stderr, "unknown -mode=%s (want single|zipf)\n", *modeS)
		os.Exit(2)
	}
	if *N <= 0 || *conc <= 0 {
		fmt.Fprintln(os.Stderr, "-n and -c must be > 0")
		os.Exit(2)
	}
	if m == modeZipf {
		if *coldN <= 0 {
			fmt.Fprintln(os.Stderr, "-cold_keys must be > 0 in zipf mode")
			os.Exit(2)
		}
		if *hotEvery < 2 {
			*hotEvery = 2
		}
	}

	baseURL := strings.TrimRight(*base, "/")

	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        *maxIdle,
		MaxIdleConnsPerHost: *maxIdlePer,
		IdleConnTimeout:     *connIdle,
	}
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	var done int64
	var tsMs int64

	worker := func(id, count int) {
		defer atomic.AddInt64(&done, int64(count))
		for i := 0; i < count; i++ {
			select {
			case <-ctx.Done():
				return
			default:
			}
			var k string
			if m == modeSingle {
				k = *key
			} else {
				if ((i + id) % *hotEvery) != 0 {
					k = *hotKey
				} else {
					idx := ((i + id) % *coldN) + 1
					k = fmt.Sprintf("cold-%d", idx)
				}
			}
			ts := atomic.AddInt64(&tsMs, 1)
			u := baseURL + "/insert?" + url.Values{
				"key":   {k},
				"value": {"1"},
				"ts_ms": {strconv.FormatInt(ts, 10)},
			}.Encode()
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			resp, err := client.Do(req)
			if err == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
			} else {
				time.Sleep(200 * time.Microsecond)
			}
			if *advanceEach > 0 && (i+1)%*advanceEach == 0 {
				au := baseURL + "/advance?" + url.Values{
					"watermark_ms": {strconv.FormatInt(ts+*advanceStep, 10)},
				}.Encode()
				areq, _ := http.NewRequestWithContext(ctx, http.MethodGet, au, nil)
				aresp, aerr := client.Do(areq)
				if aerr == nil {
					_, _ = io.Copy(io.Discard, aresp.Body)
					_ = aresp.Body.Close()
				}
			}
		}
	}

	per := *N / *conc
	rem := *N - per**conc
	var wg sync.WaitGroup
	wg.Add(*conc)
	for w := 0; w < *conc; w++ {
		count := per
		if w == *conc-1 {
			count += rem
		}
		go func(id, n int) {
			defer wg.Done()
			worker(id, n)
		}(w, count)
	}
	wg.Wait()
	elapsed := time.Since(start)
	if elapsed <= 0 {
		elapsed = time.Millisecond
	}
	ops := float64(*N) / elapsed.Seconds()
	fmt.Printf("LoadGen: mode=%s N=%d c=%d go=%d Duration=%s Throughput=%.0f req/s\n",
		m, *N, *conc, runtime.GOMAXPROCS(0), elapsed.Truncate(time.Millisecond), ops)
}
