// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package monitor

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// checkKernelVersion verifies kernel is 4.4+ (kprobes plus
// bpf_perf_event_output).
func checkKernelVersion() error {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return fmt.Errorf("failed to get kernel version: %w", err)
	}
	release := string(uname.Release[:bytes.IndexByte(uname.Release[:], 0)])

	parts := strings.SplitN(release, ".", 3)
	if len(parts) < 2 {
		return fmt.Errorf("kernel version %q: invalid format (expected X.Y.Z)", release)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("kernel version %q: invalid major version", release)
	}

	minorStr := parts[1]
	// Strip anything after first non-digit (e.g., "12+deb13" -> "12")
	for i, c := range minorStr {
		if c < '0' || c > '9' {
			minorStr = minorStr[:i]
			break
		}
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return fmt.Errorf("kernel version %q: invalid minor version", release)
	}

	if major < 4 || (major == 4 && minor < 4) {
		return fmt.Errorf("kernel %d.%d (from %q): BPF kprobes require kernel 4.4 or newer", major, minor, release)
	}

	slog.Debug("kernel version check passed", "version", release, "major", major, "minor", minor)
	return nil
}
