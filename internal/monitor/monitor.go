// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

// Package monitor owns the poll/dispatch run loop: it wires the probe,
// the event source, the decoder, the aggregator and the formatter
// together, and carries the cooperative start/stop lifecycle.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/cilium/ebpf/perf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ebpflow-monitor/internal/event"
	"github.com/ebpflow-monitor/internal/format"
	"github.com/ebpflow-monitor/internal/geoip"
	"github.com/ebpflow-monitor/internal/probe"
	"github.com/ebpflow-monitor/internal/stats"
)

// Config is read-only after Run() is called and safe for concurrent
// reads. All fields must be initialized before calling Run().
type Config struct {
	FilterTask      string // only emit events for this task name; "" = all
	FullContainerID bool   // show untruncated container ids
	PollTimeout     time.Duration
	PerfBufferPages int    // per-CPU perf buffer size in pages
	ListenAddress   string // metrics HTTP listen address; "" disables
	MetricsPath     string
	GeoIPDB         string // GeoLite2-Country path; "" disables annotation
	GeoIPCacheSize  int
	Clang           string // probe compiler binary; "" = "clang"
}

// Monitor is the run loop state: one source, one decoder, one
// aggregator, one formatter, one output writer.
type Monitor struct {
	cfg       Config
	source    Source
	decoder   *event.Decoder
	agg       *stats.Aggregator
	formatter *format.Formatter
	metrics   *metrics
	out       io.Writer

	// running is set once to false when termination is requested, and
	// observed between poll calls. It never returns to true.
	running atomic.Bool
}

// Run builds the whole pipeline and drives it until ctx is cancelled.
// On a clean stop it prints the final counter summary and returns nil.
func Run(ctx context.Context, cfg Config) error {
	if cfg.PollTimeout <= 0 {
		return fmt.Errorf("--poll-timeout must be > 0, got %v", cfg.PollTimeout)
	}
	if cfg.PerfBufferPages <= 0 {
		return fmt.Errorf("--perf-buffer-pages must be > 0, got %d", cfg.PerfBufferPages)
	}

	if err := checkKernelVersion(); err != nil {
		slog.Error("kernel version check failed", "err", err)
		return err
	}

	src, err := probe.Source(cfg.FilterTask)
	if err != nil {
		slog.Error("rendering probe source failed", "err", err)
		return fmt.Errorf("probe source: %w", err)
	}
	if cfg.FilterTask != "" {
		slog.Info("task filter enabled", "task", cfg.FilterTask)
	}

	loader := &probe.Loader{Clang: cfg.Clang}
	p, err := loader.Load(ctx, src)
	if err != nil {
		slog.Error("probe load failed", "err", err)
		return fmt.Errorf("loading probe: %w", err)
	}
	defer p.Close()
	slog.Info("probe loaded and attached")

	var geo *geoip.Lookup
	if cfg.GeoIPDB != "" {
		geo, err = geoip.Open(cfg.GeoIPDB, cfg.GeoIPCacheSize)
		if err != nil {
			slog.Warn("geoip db open failed, annotation disabled", "path", cfg.GeoIPDB, "err", err)
			geo = nil
		} else {
			defer geo.Close()
		}
	}

	source, err := newPerfSource(p.EventMap(), cfg.PerfBufferPages*os.Getpagesize())
	if err != nil {
		slog.Error("perf reader setup failed", "err", err)
		return fmt.Errorf("opening perf buffer: %w", err)
	}
	defer source.Close()
	slog.Info("perf buffer opened", "pages_per_cpu", cfg.PerfBufferPages)

	m := newMetrics()
	m.register()
	m.configPollTimeout.Set(cfg.PollTimeout.Seconds())
	m.configPerfBufferPages.Set(float64(cfg.PerfBufferPages))

	if cfg.ListenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{EnableOpenMetrics: true},
		))
		srv := &http.Server{Addr: cfg.ListenAddress, Handler: mux}
		slog.Info("metrics server starting", "listen", cfg.ListenAddress, "path", cfg.MetricsPath)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server", "err", err)
			}
		}()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancelShutdown()
		defer srv.Shutdown(shutdownCtx)
	}

	f := &format.Formatter{FullContainerID: cfg.FullContainerID}
	if geo != nil {
		f.Country = geo.CountryV4
	}

	mon := &Monitor{
		cfg:       cfg,
		source:    source,
		decoder:   event.NewDecoder(event.NativeEndian()),
		agg:       stats.New(),
		formatter: f,
		metrics:   m,
		out:       os.Stdout,
	}
	return mon.loop(ctx)
}

// loop is the steady state: poll with a bounded timeout so termination
// is observed with bounded latency, decode and dispatch every delivered
// record, and emit the summary exactly once after the loop exits. A
// record read before the stop flag is observed is still fully
// processed.
func (mo *Monitor) loop(ctx context.Context) error {
	mo.running.Store(true)
	stop := context.AfterFunc(ctx, func() {
		mo.running.Store(false)
	})
	defer stop()

	slog.Info("polling events", "timeout", mo.cfg.PollTimeout)
	for mo.running.Load() {
		mo.source.SetDeadline(time.Now().Add(mo.cfg.PollTimeout))
		rec, err := mo.source.Read()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if errors.Is(err, perf.ErrClosed) {
				break
			}
			// No recovery protocol exists at this layer; the counters
			// and output are still consistent, so fail the process.
			return fmt.Errorf("reading event source: %w", err)
		}
		mo.dispatch(rec)
	}

	snap := mo.agg.Snapshot()
	io.WriteString(mo.out, mo.formatter.Summary(snap)+"\n")
	slog.Info("stopped", "total", snap.Total(), "accepts", snap.Accepts, "connects", snap.Connects)
	return nil
}

// dispatch handles one delivery: lost-sample accounting, decode, then
// aggregate and print. Undecodable records are dropped, never fatal.
// The event block is written in a single Write so concurrent writers
// cannot corrupt it.
func (mo *Monitor) dispatch(rec Record) {
	if rec.LostSamples > 0 {
		slog.Warn("perf buffer dropped samples", "count", rec.LostSamples)
		if mo.metrics != nil {
			mo.metrics.lostSamplesTotal.Add(float64(rec.LostSamples))
		}
		return
	}

	ev, err := mo.decoder.Decode(rec.RawSample)
	if err != nil {
		slog.Debug("dropping undecodable record", "err", err)
		if mo.metrics != nil {
			mo.metrics.decodeErrorsTotal.WithLabelValues(decodeErrorReason(err)).Inc()
		}
		return
	}

	mo.agg.Add(ev.Kind)
	if mo.metrics != nil {
		mo.metrics.eventsTotal.WithLabelValues(ev.Kind.String()).Inc()
	}
	io.WriteString(mo.out, mo.formatter.Event(ev)+"\n")
}
