// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package event

import (
	"encoding/binary"
	"unsafe"
)

// NativeEndian returns the byte order of the CPU this process runs on.
// The probe writes record integers in its native order, and probe and
// consumer share a machine, so this is the order Decode must use.
func NativeEndian() binary.ByteOrder {
	test := uint16(0xF00D)
	testByte := *((*byte)(unsafe.Pointer(&test)))

	if testByte == 0xF0 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}
