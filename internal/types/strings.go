// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package types

// Command returns the task comm as a Go string, stopping at the first
// NUL within capacity.
func (t *TaskInfo) Command() string {
	return cString(t.Comm[:])
}

// CgroupName returns the cgroup byte string as a Go string, stopping at
// the first NUL within capacity.
func (t *TaskInfo) CgroupName() string {
	return cString(t.Cgroup[:])
}

// cString converts a fixed-capacity kernel byte string. A missing NUL
// means the value filled its capacity and was truncated by the probe,
// not that the record is malformed, so the full capacity is returned.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
