// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

// Package format renders decoded flow events and counter snapshots as
// deterministic text. Formatting is pure: the run loop owns where the
// output goes.
package format

import (
	"fmt"
	"strings"

	"github.com/ebpflow-monitor/internal/event"
	"github.com/ebpflow-monitor/internal/stats"
)

// containerIDDisplayLen is how many leading bytes of the container id
// are shown unless full display is requested. Truncation is display
// only; the decoded event keeps the whole value.
const containerIDDisplayLen = 12

// rootCgroup marks a task running outside any container.
const rootCgroup = "/"

// continuation visually nests the lines describing a single event.
const continuation = "\n|__"

// Formatter renders events and summaries. The zero value renders with
// truncated container ids and no country annotation.
type Formatter struct {
	// FullContainerID disables the 12-byte container id truncation.
	FullContainerID bool

	// Country, when non-nil, resolves a raw network-order IPv4 address
	// to a country code for the netinfo line. An empty result
	// suppresses the annotation. Must be pure and safe for concurrent
	// use.
	Country func(addr [4]byte) string
}

// Event renders one decoded event as a multi-line block, lines joined
// with the continuation marker: task line, parent line, netinfo line,
// then a container line only when the task runs in a container.
func (f *Formatter) Event(ev *event.FlowEvent) string {
	lines := make([]string, 0, 4)

	t := &ev.Task
	lines = append(lines, fmt.Sprintf("[ktime: %d][gid: %d][uid: %d][pid: %d][%s]",
		ev.KTimeNs, t.GID, t.UID, t.PID, t.Command()))

	p := &ev.Parent
	lines = append(lines, fmt.Sprintf("parent: [gid: %d][uid: %d][pid: %d][%s]",
		p.GID, p.UID, p.PID, p.Command()))

	netLine := fmt.Sprintf("netinfo: [%s][IPv4][%s:%d <-> %s:%d]",
		ev.Kind, ev.Net.LocalIP(), ev.Net.LocalPort, ev.Net.RemoteIP(), ev.Net.RemotePort)
	if f.Country != nil {
		if cc := f.Country(ev.Net.RemoteAddr); cc != "" {
			netLine += fmt.Sprintf("[geo: %s]", cc)
		}
	}
	lines = append(lines, netLine)

	if cg := t.CgroupName(); cg != "" && cg != rootCgroup {
		id := cg
		if !f.FullContainerID && len(id) > containerIDDisplayLen {
			id = id[:containerIDDisplayLen]
		}
		lines = append(lines, fmt.Sprintf("container: [dockerid: %s]", id))
	}

	return strings.Join(lines, continuation)
}

// Summary renders the shutdown counter block: total, accepts, connects.
func (f *Formatter) Summary(s stats.Snapshot) string {
	return fmt.Sprintf("===== Events count =====\ntot: %d\naccpt: %d\nconn: %d",
		s.Total(), s.Accepts, s.Connects)
}
