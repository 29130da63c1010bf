// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

// Package probe owns the kernel-side program: rendering the embedded C
// source with the optional task-name filter, compiling it, loading the
// result into the kernel and attaching the kprobes.
package probe

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ebpflow-monitor/internal/types"
)

//go:embed c/ebpflow.c
var programSource string

// filterToken is the substitution point in the probe source. Replaced
// with a generated task-name comparison, or with nothing when no filter
// is requested.
const filterToken = "FLTR_TASK"

// Source renders the probe program source. With a filter, event
// submission is guarded by an equality comparison on the task comm; the
// substituted program is handed to the loader uninterpreted.
func Source(filterTask string) (string, error) {
	fltr := ""
	if filterTask != "" {
		if err := validateTaskName(filterTask); err != nil {
			return "", err
		}
		fltr = fmt.Sprintf("if (ebpf_strcmp(event_data.task.task, %q) == 0)", filterTask)
	}

	return strings.ReplaceAll(programSource, filterToken, fltr), nil
}

// validateTaskName rejects filter values that cannot be spliced into C
// source as a string literal, and values that could never match a comm
// because they exceed the kernel's capacity.
func validateTaskName(name string) error {
	if len(name) >= types.TaskCommLen {
		return fmt.Errorf("task filter %q exceeds %d bytes", name, types.TaskCommLen-1)
	}
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return fmt.Errorf("task filter %q contains characters that cannot appear in the probe source", name)
		}
	}
	return nil
}
