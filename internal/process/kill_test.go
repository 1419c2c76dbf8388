package process

// Real termination is covered by the PDF exporter integration tests: killing
// live processes from a unit test is unsafe.

import "testing"

func TestKillProcessGroup_NonPositivePID(t *testing.T) {
	t.Parallel()

	// PID 0 would target the current process group; it must be a no-op.
	for _, pid := range []int{0, -1} {
		KillProcessGroup(pid)
	}
}

func TestKillProcessGroup_UnknownPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}
