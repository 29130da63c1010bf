// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package format

import (
	"strings"
	"testing"

	"github.com/ebpflow-monitor/internal/event"
	"github.com/ebpflow-monitor/internal/stats"
)

func testEvent(kind event.Kind, cgroup string) *event.FlowEvent {
	ev := &event.FlowEvent{
		AbsTimeNs: 1712000000000000000,
		KTimeNs:   987654321,
		Kind:      kind,
		Net: event.Net{
			LocalPort:  8080,
			RemotePort: 443,
			LocalAddr:  [4]byte{192, 168, 1, 10},
			RemoteAddr: [4]byte{93, 184, 216, 34},
		},
	}
	ev.Task.PID = 4242
	ev.Task.UID = 1000
	ev.Task.GID = 1000
	copy(ev.Task.Comm[:], "curl")
	copy(ev.Task.Cgroup[:], cgroup)
	ev.Parent.PID = 1
	copy(ev.Parent.Comm[:], "bash")
	copy(ev.Parent.Cgroup[:], "/")
	return ev
}

func TestEventBlock(t *testing.T) {
	f := &Formatter{}
	got := f.Event(testEvent(event.KindConnect, "/"))

	want := "[ktime: 987654321][gid: 1000][uid: 1000][pid: 4242][curl]" +
		"\n|__parent: [gid: 0][uid: 0][pid: 1][bash]" +
		"\n|__netinfo: [TCP/CONN][IPv4][192.168.1.10:8080 <-> 93.184.216.34:443]"
	if got != want {
		t.Errorf("unexpected event block:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEventRootCgroupSuppressesContainerLine(t *testing.T) {
	f := &Formatter{}
	got := f.Event(testEvent(event.KindAccept, "/"))

	if strings.Contains(got, "container:") {
		t.Errorf("expected no container line for root cgroup, got:\n%s", got)
	}
	if !strings.Contains(got, "[TCP/ACC]") {
		t.Errorf("expected TCP/ACC label, got:\n%s", got)
	}
}

func TestEventContainerIDTruncation(t *testing.T) {
	const cgroup = "abcdef0123456789"

	truncated := (&Formatter{}).Event(testEvent(event.KindConnect, cgroup))
	if !strings.Contains(truncated, "container: [dockerid: abcdef012345]") {
		t.Errorf("expected 12-byte container id, got:\n%s", truncated)
	}
	if strings.Contains(truncated, cgroup) {
		t.Errorf("expected truncated container id, got full value:\n%s", truncated)
	}

	full := (&Formatter{FullContainerID: true}).Event(testEvent(event.KindConnect, cgroup))
	if !strings.Contains(full, "container: [dockerid: "+cgroup+"]") {
		t.Errorf("expected full container id, got:\n%s", full)
	}
}

func TestEventShortContainerIDNotPadded(t *testing.T) {
	got := (&Formatter{}).Event(testEvent(event.KindConnect, "shortid"))
	if !strings.Contains(got, "container: [dockerid: shortid]") {
		t.Errorf("expected short container id unchanged, got:\n%s", got)
	}
}

func TestEventCountryAnnotation(t *testing.T) {
	f := &Formatter{
		Country: func(addr [4]byte) string {
			if addr == [4]byte{93, 184, 216, 34} {
				return "US"
			}
			return ""
		},
	}

	got := f.Event(testEvent(event.KindConnect, "/"))
	if !strings.Contains(got, "<-> 93.184.216.34:443][geo: US]") {
		t.Errorf("expected country annotation on netinfo line, got:\n%s", got)
	}

	// Unresolved addresses carry no annotation.
	ev := testEvent(event.KindConnect, "/")
	ev.Net.RemoteAddr = [4]byte{10, 0, 0, 1}
	got = f.Event(ev)
	if strings.Contains(got, "[geo:") {
		t.Errorf("expected no annotation for unresolved address, got:\n%s", got)
	}
}

func TestSummary(t *testing.T) {
	f := &Formatter{}
	got := f.Summary(stats.Snapshot{Accepts: 3, Connects: 4})

	want := "===== Events count =====\ntot: 7\naccpt: 3\nconn: 4"
	if got != want {
		t.Errorf("unexpected summary:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
