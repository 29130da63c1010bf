// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package types

// Kernel-side capacity constants. TaskCommLen is TASK_COMM_LEN from
// linux/sched.h; CgroupNameLen is the capacity the probe copies the
// cgroup name into.
const (
	TaskCommLen   = 16
	CgroupNameLen = 64
)

// TaskInfo matches struct task_info in internal/probe/c/ebpflow.c.
// Cgroup and Comm are fixed-capacity byte strings: NUL-terminated when
// shorter than their capacity, truncated (no NUL) when not.
type TaskInfo struct {
	PID    uint32
	UID    uint32
	GID    uint32
	Cgroup [CgroupNameLen]byte
	Comm   [TaskCommLen]byte
}

// NetInfo4 matches struct net_info4 in internal/probe/c/ebpflow.c.
// Ports and addresses are in network byte order as written by the probe;
// they are kept as raw bytes here so no byte-order decision is baked in
// before decode.
type NetInfo4 struct {
	LocPort [2]byte
	DstPort [2]byte
	SAddr   [4]byte
	DAddr   [4]byte
}

// FlowRecord matches struct flow_event in internal/probe/c/ebpflow.c,
// the exact layout delivered through the perf buffer. Integer fields are
// in the probe CPU's native byte order.
type FlowRecord struct {
	AbsTimeNs  uint64
	KTimeNs    uint64
	Task       TaskInfo
	ParentTask TaskInfo
	EType      int32
	Net        NetInfo4
}

// RecordSize is the encoded size of FlowRecord: 8+8+92+92+4+12 bytes.
// Every field is naturally aligned in the C struct, so the wire size is
// the plain sum of the field sizes with no padding.
const RecordSize = 216
