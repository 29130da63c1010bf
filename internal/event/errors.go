// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package event

import (
	"fmt"

	"github.com/ebpflow-monitor/internal/types"
)

// SizeMismatchError is returned by Decode when the raw buffer length
// does not match the negotiated record layout. The record is dropped;
// the error is never fatal to the consumer.
type SizeMismatchError struct {
	Got int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("record size mismatch: got %d bytes, want %d", e.Got, types.RecordSize)
}

// UnknownEventKindError is returned by Decode when the record carries an
// event kind outside the set the probe is defined to emit. The kernel
// side is the source of truth, but it must never be able to crash the
// consumer, so this too is drop-and-continue.
type UnknownEventKindError struct {
	Kind int32
}

func (e *UnknownEventKindError) Error() string {
	return fmt.Sprintf("unknown event kind %d", e.Kind)
}
