// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package monitor

import (
	"time"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/perf"
)

// Record is one delivery from the event source: either raw record bytes
// or a count of samples the kernel had to drop because the buffer was
// full.
type Record struct {
	RawSample   []byte
	LostSamples uint64
}

// Source abstracts the perf buffer so the run loop can be driven by a
// mock in tests. Read blocks until a record arrives or the deadline set
// by SetDeadline passes, in which case it returns an error satisfying
// errors.Is(err, os.ErrDeadlineExceeded).
type Source interface {
	Read() (Record, error)
	SetDeadline(t time.Time)
	Close() error
}

// perfSource adapts a cilium/ebpf perf.Reader to Source.
type perfSource struct {
	rd *perf.Reader
}

func newPerfSource(events *ebpf.Map, perCPUBufferBytes int) (*perfSource, error) {
	rd, err := perf.NewReader(events, perCPUBufferBytes)
	if err != nil {
		return nil, err
	}
	return &perfSource{rd: rd}, nil
}

func (s *perfSource) Read() (Record, error) {
	rec, err := s.rd.Read()
	if err != nil {
		return Record{}, err
	}
	return Record{
		RawSample:   rec.RawSample,
		LostSamples: rec.LostSamples,
	}, nil
}

func (s *perfSource) SetDeadline(t time.Time) {
	s.rd.SetDeadline(t)
}

func (s *perfSource) Close() error {
	return s.rd.Close()
}
