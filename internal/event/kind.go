// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package event

import "fmt"

// Kind identifies the flow event type. The values are defined by the
// probe and should be kept in sync with the equivalent definitions in
// internal/probe/c/ebpflow.c.
type Kind int32

const (
	KindAccept  Kind = 601
	KindConnect Kind = 602
)

// Valid reports whether k is one of the event kinds the probe emits.
func (k Kind) Valid() bool {
	return k == KindAccept || k == KindConnect
}

func (k Kind) String() string {
	switch k {
	case KindAccept:
		return "TCP/ACC"
	case KindConnect:
		return "TCP/CONN"
	default:
		return fmt.Sprintf("unknown(%d)", int32(k))
	}
}
