// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package monitor

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ebpflow-monitor/internal/event"
)

type metrics struct {
	eventsTotal           *prometheus.CounterVec
	decodeErrorsTotal     *prometheus.CounterVec
	lostSamplesTotal      prometheus.Counter
	configPollTimeout     prometheus.Gauge
	configPerfBufferPages prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ebpflow_events_total",
				Help: "Total decoded flow events, by kind.",
			},
			[]string{"kind"},
		),
		decodeErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ebpflow_decode_errors_total",
				Help: "Records dropped because they could not be decoded, by reason.",
			},
			[]string{"reason"},
		),
		lostSamplesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ebpflow_perf_lost_samples_total",
				Help: "Samples the kernel dropped because the perf buffer was full.",
			},
		),
		configPollTimeout: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ebpflow_config_poll_timeout_seconds",
				Help: "Configured event source poll timeout in seconds.",
			},
		),
		configPerfBufferPages: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ebpflow_config_perf_buffer_pages",
				Help: "Configured per-CPU perf buffer size in memory pages.",
			},
		),
	}
}

func (m *metrics) register() {
	prometheus.MustRegister(
		m.eventsTotal,
		m.decodeErrorsTotal,
		m.lostSamplesTotal,
		m.configPollTimeout,
		m.configPerfBufferPages,
	)
	slog.Info("Prometheus metrics registered")
}

func decodeErrorReason(err error) string {
	var sizeErr *event.SizeMismatchError
	if errors.As(err, &sizeErr) {
		return "size_mismatch"
	}
	var kindErr *event.UnknownEventKindError
	if errors.As(err, &kindErr) {
		return "unknown_kind"
	}
	return "other"
}
