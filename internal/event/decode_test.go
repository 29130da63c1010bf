// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package event

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ebpflow-monitor/internal/types"
)

// testRecord builds a fully-populated wire record with the given event
// kind value.
func testRecord(etype int32) types.FlowRecord {
	var rec types.FlowRecord
	rec.AbsTimeNs = 1712000000000000000
	rec.KTimeNs = 987654321

	rec.Task.PID = 4242
	rec.Task.UID = 1000
	rec.Task.GID = 1000
	copy(rec.Task.Cgroup[:], "abcdef0123456789deadbeef")
	copy(rec.Task.Comm[:], "curl")

	rec.ParentTask.PID = 1
	rec.ParentTask.UID = 0
	rec.ParentTask.GID = 0
	copy(rec.ParentTask.Cgroup[:], "/")
	copy(rec.ParentTask.Comm[:], "bash")

	rec.EType = etype

	rec.Net.LocPort = [2]byte{0x1F, 0x90} // 8080 network order
	rec.Net.DstPort = [2]byte{0x01, 0xBB} // 443 network order
	rec.Net.SAddr = [4]byte{192, 168, 1, 10}
	rec.Net.DAddr = [4]byte{93, 184, 216, 34}
	return rec
}

func encodeRecord(t *testing.T, rec types.FlowRecord) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, &rec); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	if buf.Len() != types.RecordSize {
		t.Fatalf("fixture encodes to %d bytes, want %d", buf.Len(), types.RecordSize)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodeRecord(t, testRecord(602))
	decoder := NewDecoder(binary.LittleEndian)

	ev, err := decoder.Decode(data)
	if err != nil {
		t.Fatalf("expected nil error, got %v (of type %T)", err, err)
	}

	if ev.Kind != KindConnect {
		t.Errorf("expected kind %v, got %v", KindConnect, ev.Kind)
	}
	if ev.AbsTimeNs != 1712000000000000000 || ev.KTimeNs != 987654321 {
		t.Errorf("unexpected timestamps: abs=%d ktime=%d", ev.AbsTimeNs, ev.KTimeNs)
	}
	if ev.Task.PID != 4242 || ev.Task.UID != 1000 || ev.Task.GID != 1000 {
		t.Errorf("unexpected task identity: %+v", ev.Task)
	}
	if got := ev.Task.Command(); got != "curl" {
		t.Errorf("expected task command %q, got %q", "curl", got)
	}
	if got := ev.Task.CgroupName(); got != "abcdef0123456789deadbeef" {
		t.Errorf("unexpected cgroup name %q", got)
	}
	if got := ev.Parent.Command(); got != "bash" {
		t.Errorf("expected parent command %q, got %q", "bash", got)
	}
	if ev.Net.LocalPort != 8080 || ev.Net.RemotePort != 443 {
		t.Errorf("expected host-order ports 8080/443, got %d/%d", ev.Net.LocalPort, ev.Net.RemotePort)
	}
	if got := ev.Net.LocalIP().String(); got != "192.168.1.10" {
		t.Errorf("expected local address 192.168.1.10, got %q", got)
	}
	if got := ev.Net.RemoteIP().String(); got != "93.184.216.34" {
		t.Errorf("expected remote address 93.184.216.34, got %q", got)
	}
}

func TestDecodeMarshalRoundTrip(t *testing.T) {
	decoder := NewDecoder(binary.LittleEndian)

	for _, etype := range []int32{601, 602} {
		data := encodeRecord(t, testRecord(etype))

		ev, err := decoder.Decode(data)
		if err != nil {
			t.Fatalf("etype %d: expected nil error, got %v", etype, err)
		}

		out, err := decoder.Marshal(ev)
		if err != nil {
			t.Fatalf("etype %d: marshal: %v", etype, err)
		}
		if !bytes.Equal(out, data) {
			t.Errorf("etype %d: round trip did not reproduce input bytes", etype)
		}
	}
}

func TestDecodeSizeMismatch(t *testing.T) {
	decoder := NewDecoder(binary.LittleEndian)

	for _, size := range []int{0, 1, types.RecordSize - 1, types.RecordSize + 1, 2 * types.RecordSize} {
		_, err := decoder.Decode(make([]byte, size))
		if err == nil {
			t.Fatalf("size %d: expected error, got nil", size)
		}

		var sizeErr *SizeMismatchError
		if !errors.As(err, &sizeErr) {
			t.Errorf("size %d: expected SizeMismatchError, got %v (of type %T)", size, err, err)
			continue
		}
		if sizeErr.Got != size {
			t.Errorf("size %d: error reports %d bytes", size, sizeErr.Got)
		}
	}
}

func TestDecodeUnknownEventKind(t *testing.T) {
	decoder := NewDecoder(binary.LittleEndian)

	for _, etype := range []int32{0, 1, 600, 603, -601} {
		data := encodeRecord(t, testRecord(etype))

		_, err := decoder.Decode(data)
		if err == nil {
			t.Fatalf("etype %d: expected error, got nil", etype)
		}

		var kindErr *UnknownEventKindError
		if !errors.As(err, &kindErr) {
			t.Errorf("etype %d: expected UnknownEventKindError, got %v (of type %T)", etype, err, err)
			continue
		}
		if kindErr.Kind != etype {
			t.Errorf("etype %d: error reports kind %d", etype, kindErr.Kind)
		}
	}
}

func TestDecodeTruncatedByteStrings(t *testing.T) {
	rec := testRecord(601)

	// Fill comm and cgroup to capacity with no NUL terminator: the full
	// capacity is readable, nothing past it.
	for i := range rec.Task.Comm {
		rec.Task.Comm[i] = 'x'
	}
	for i := range rec.Task.Cgroup {
		rec.Task.Cgroup[i] = 'c'
	}

	decoder := NewDecoder(binary.LittleEndian)
	ev, err := decoder.Decode(encodeRecord(t, rec))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if got := ev.Task.Command(); len(got) != types.TaskCommLen {
		t.Errorf("expected %d-byte command, got %d bytes (%q)", types.TaskCommLen, len(got), got)
	}
	if got := ev.Task.CgroupName(); len(got) != types.CgroupNameLen {
		t.Errorf("expected %d-byte cgroup, got %d bytes", types.CgroupNameLen, len(got))
	}
}

func TestKindString(t *testing.T) {
	if got := KindAccept.String(); got != "TCP/ACC" {
		t.Errorf("expected TCP/ACC, got %q", got)
	}
	if got := KindConnect.String(); got != "TCP/CONN" {
		t.Errorf("expected TCP/CONN, got %q", got)
	}
	if got := Kind(603).String(); got != "unknown(603)" {
		t.Errorf("expected unknown(603), got %q", got)
	}
}
