package hackvm

import (
	"fmt"
	"testing"
)

// assert mirrors the pack's small hand-rolled testing helper (no assertion
// library, matching the chosen teacher's zero-test-dependency style).
func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

// runProgram links the given named sources and ticks the VM to completion
// (Halted or Faulted), returning the VM for assertions.
func runProgram(t *testing.T, files map[string]string, order []string) *VM {
	t.Helper()
	v := NewVM()
	for _, name := range order {
		if err := v.LoadFile(name, files[name]); err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
	}
	if err := v.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for i := 0; i < 1000; i++ {
		if v.Status() != StatusRunning {
			break
		}
		// A runtime fault is a legitimate terminal status, not a harness
		// failure, so only the caller's own assertions judge it.
		v.Tick(1000)
	}
	return v
}
