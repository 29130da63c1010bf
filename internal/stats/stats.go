// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

// Package stats keeps the process-wide accept/connect tallies. The perf
// buffer may deliver from one reader per CPU, so mutation must be safe
// from any number of concurrent callers.
package stats

import (
	"sync/atomic"

	"github.com/ebpflow-monitor/internal/event"
)

// Aggregator counts accept and connect events for the process lifetime.
// Counters are monotonic: no decrement, no reset. The zero value is
// ready to use.
type Aggregator struct {
	accepts  atomic.Uint64
	connects atomic.Uint64
}

func New() *Aggregator {
	return new(Aggregator)
}

// Add records one decoded event. Safe for concurrent use.
func (a *Aggregator) Add(kind event.Kind) {
	if kind == event.KindAccept {
		a.accepts.Add(1)
		return
	}
	a.connects.Add(1)
}

// Snapshot is a point-in-time read of the counters.
type Snapshot struct {
	Accepts  uint64
	Connects uint64
}

func (s Snapshot) Total() uint64 {
	return s.Accepts + s.Connects
}

// Snapshot returns the current counter values. Each counter read is
// linearizable; the two reads are not taken at a single shared instant.
func (a *Aggregator) Snapshot() Snapshot {
	return Snapshot{
		Accepts:  a.accepts.Load(),
		Connects: a.connects.Load(),
	}
}
