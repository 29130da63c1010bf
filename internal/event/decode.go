// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

// Package event implements the decode contract for raw flow records
// delivered by the kernel probe: a length-validated structural
// reinterpretation of the fixed C layout, with typed non-fatal errors
// for anything that does not match.
package event

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/ebpflow-monitor/internal/types"
)

// Net is the decoded IPv4 connection tuple. Ports are host byte order;
// addresses stay as raw network-order bytes and render dotted-quad.
type Net struct {
	LocalPort  uint16
	RemotePort uint16
	LocalAddr  [4]byte
	RemoteAddr [4]byte
}

func (n *Net) LocalIP() net.IP  { return net.IP(n.LocalAddr[:]) }
func (n *Net) RemoteIP() net.IP { return net.IP(n.RemoteAddr[:]) }

// FlowEvent is one decoded record. It is immutable after Decode and
// retains every wire field losslessly, so Marshal can reproduce the
// original bytes and display truncation never loses data.
type FlowEvent struct {
	AbsTimeNs uint64
	KTimeNs   uint64
	Task      types.TaskInfo
	Parent    types.TaskInfo
	Kind      Kind
	Net       Net
}

// Decoder converts raw perf-buffer bytes into FlowEvents using a fixed
// byte order for the record's integer fields.
type Decoder struct {
	order binary.ByteOrder
}

func NewDecoder(order binary.ByteOrder) *Decoder {
	return &Decoder{order: order}
}

// Decode validates the buffer length, reinterprets the fixed layout and
// validates the event kind. Both failure modes return typed errors and
// leave nothing half-built; callers drop the record and continue.
func (d *Decoder) Decode(data []byte) (*FlowEvent, error) {
	if len(data) != types.RecordSize {
		return nil, &SizeMismatchError{Got: len(data)}
	}

	var raw types.FlowRecord
	if err := binary.Read(bytes.NewReader(data), d.order, &raw); err != nil {
		return nil, fmt.Errorf("reading flow record: %w", err)
	}

	kind := Kind(raw.EType)
	if !kind.Valid() {
		return nil, &UnknownEventKindError{Kind: raw.EType}
	}

	return &FlowEvent{
		AbsTimeNs: raw.AbsTimeNs,
		KTimeNs:   raw.KTimeNs,
		Task:      raw.Task,
		Parent:    raw.ParentTask,
		Kind:      kind,
		Net: Net{
			LocalPort:  binary.BigEndian.Uint16(raw.Net.LocPort[:]),
			RemotePort: binary.BigEndian.Uint16(raw.Net.DstPort[:]),
			LocalAddr:  raw.Net.SAddr,
			RemoteAddr: raw.Net.DAddr,
		},
	}, nil
}

// Marshal re-serialises a decoded event using the same layout Decode
// reads. Decode followed by Marshal reproduces the input bytes exactly.
func (d *Decoder) Marshal(ev *FlowEvent) ([]byte, error) {
	raw := types.FlowRecord{
		AbsTimeNs:  ev.AbsTimeNs,
		KTimeNs:    ev.KTimeNs,
		Task:       ev.Task,
		ParentTask: ev.Parent,
		EType:      int32(ev.Kind),
		Net: types.NetInfo4{
			SAddr: ev.Net.LocalAddr,
			DAddr: ev.Net.RemoteAddr,
		},
	}
	binary.BigEndian.PutUint16(raw.Net.LocPort[:], ev.Net.LocalPort)
	binary.BigEndian.PutUint16(raw.Net.DstPort[:], ev.Net.RemotePort)

	buf := bytes.NewBuffer(make([]byte, 0, types.RecordSize))
	if err := binary.Write(buf, d.order, &raw); err != nil {
		return nil, fmt.Errorf("writing flow record: %w", err)
	}

	return buf.Bytes(), nil
}
