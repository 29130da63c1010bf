// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package probe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/rlimit"
)

// Attach points and the perf map name. Must match the probe source.
const (
	connectSymbol = "tcp_v4_connect"
	acceptSymbol  = "inet_csk_accept"
)

// Objects are the kernel objects assigned out of the loaded collection.
// Tags must match the program and map names in the probe source.
type Objects struct {
	UserBuffer    *ebpf.Map     `ebpf:"user_buffer"`
	ConnectEntry  *ebpf.Program `ebpf:"trace_connect_entry"`
	ConnectReturn *ebpf.Program `ebpf:"trace_connect_v4_return"`
	AcceptReturn  *ebpf.Program `ebpf:"trace_accept_return"`
}

func (o *Objects) close() {
	if o.UserBuffer != nil {
		o.UserBuffer.Close()
	}
	if o.ConnectEntry != nil {
		o.ConnectEntry.Close()
	}
	if o.ConnectReturn != nil {
		o.ConnectReturn.Close()
	}
	if o.AcceptReturn != nil {
		o.AcceptReturn.Close()
	}
}

// Probe is a loaded and attached kernel probe. Closing it detaches the
// kprobes and unloads the programs; no events are delivered afterwards.
type Probe struct {
	objs  Objects
	links []link.Link
}

// EventMap returns the perf event map the probe submits records to.
func (p *Probe) EventMap() *ebpf.Map {
	return p.objs.UserBuffer
}

func (p *Probe) Close() {
	for _, l := range p.links {
		l.Close()
	}
	p.objs.close()
}

// Loader compiles a rendered probe source and loads it into the kernel.
// The loader does not interpret the source beyond handing it to the
// compiler.
type Loader struct {
	// Clang is the compiler binary to invoke; "clang" when empty.
	Clang string
}

// Load compiles src, loads the resulting object and attaches the
// kprobes. On success the returned Probe is live and emitting events.
func (l *Loader) Load(ctx context.Context, src string) (*Probe, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("removing memlock rlimit: %w", err)
	}

	obj, err := l.compile(ctx, src)
	if err != nil {
		return nil, err
	}
	slog.Debug("probe compiled", "object_bytes", len(obj))

	spec, err := ebpf.LoadCollectionSpecFromReader(bytes.NewReader(obj))
	if err != nil {
		return nil, fmt.Errorf("parsing probe object: %w", err)
	}

	p := new(Probe)
	if err := spec.LoadAndAssign(&p.objs, nil); err != nil {
		return nil, fmt.Errorf("loading probe objects: %w", err)
	}

	attachments := []struct {
		attach  func(string, *ebpf.Program, *link.KprobeOptions) (link.Link, error)
		symbol  string
		program *ebpf.Program
	}{
		{link.Kprobe, connectSymbol, p.objs.ConnectEntry},
		{link.Kretprobe, connectSymbol, p.objs.ConnectReturn},
		{link.Kretprobe, acceptSymbol, p.objs.AcceptReturn},
	}
	for _, a := range attachments {
		lnk, err := a.attach(a.symbol, a.program, nil)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("attaching to %s: %w", a.symbol, err)
		}
		p.links = append(p.links, lnk)
		slog.Debug("kprobe attached", "symbol", a.symbol)
	}

	return p, nil
}

func (l *Loader) compile(ctx context.Context, src string) ([]byte, error) {
	clang := l.Clang
	if clang == "" {
		clang = "clang"
	}

	dir, err := os.MkdirTemp("", "ebpflow-probe-*")
	if err != nil {
		return nil, fmt.Errorf("creating build dir: %w", err)
	}
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, "ebpflow.c")
	objPath := filepath.Join(dir, "ebpflow.o")
	if err := os.WriteFile(srcPath, []byte(src), 0o600); err != nil {
		return nil, fmt.Errorf("writing probe source: %w", err)
	}

	cmd := exec.CommandContext(ctx, clang,
		"-O2", "-g", "-Wall",
		"-target", "bpf",
		"-D__TARGET_ARCH_"+targetArch(),
		"-c", srcPath,
		"-o", objPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("compiling probe: %w: %s", err, stderr.String())
	}

	return os.ReadFile(objPath)
}

func targetArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86"
	case "arm64":
		return "arm64"
	default:
		return runtime.GOARCH
	}
}
