// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebpflow-monitor/internal/log"
	"github.com/ebpflow-monitor/internal/monitor"
)

var (
	filterTask      = flag.String("task", "", "Only emit events whose task (command) name equals this value")
	noTrunc         = flag.Bool("no-trunc", false, "Show the full container id instead of the first 12 bytes")
	pollTimeout     = flag.Duration("poll-timeout", 50*time.Millisecond, "Event source poll timeout; bounds shutdown latency")
	perfBufferPages = flag.Int("perf-buffer-pages", 16, "Per-CPU perf buffer size in memory pages")
	logLevel        = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	listenAddress   = flag.String("listen-address", "127.0.0.1:9108", "HTTP server listen address for Prometheus metrics; empty disables")
	metricsPath     = flag.String("metrics-path", "/metrics", "HTTP path for Prometheus metrics")
	geoipDB         = flag.String("geoip-db", "", "Path to GeoLite2-Country.mmdb for remote-address country annotation; empty disables")
	geoipCacheSize  = flag.Int("geoip-cache-size", 65536, "GeoIP LRU cache size (address -> country)")
	clangPath       = flag.String("clang", "clang", "Compiler used to build the kernel probe")
)

func main() {
	flag.Parse()

	if err := log.Configure(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}

	slog.Info("starting ebpflow",
		"task_filter", *filterTask,
		"poll_timeout", *pollTimeout,
		"listen", *listenAddress,
	)
	slog.Debug("config",
		"perf_buffer_pages", *perfBufferPages,
		"metrics_path", *metricsPath,
		"geoip_db", *geoipDB,
		"no_trunc", *noTrunc,
	)

	cfg := monitor.Config{
		FilterTask:      *filterTask,
		FullContainerID: *noTrunc,
		PollTimeout:     *pollTimeout,
		PerfBufferPages: *perfBufferPages,
		ListenAddress:   *listenAddress,
		MetricsPath:     *metricsPath,
		GeoIPDB:         *geoipDB,
		GeoIPCacheSize:  *geoipCacheSize,
		Clang:           *clangPath,
	}

	// Run blocks until the first interrupt; the in-flight poll cycle is
	// drained before the summary is printed.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := monitor.Run(ctx, cfg); err != nil {
		slog.Error("monitor run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutdown complete")
}
