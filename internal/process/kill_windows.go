//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its child processes with taskkill /T.
// Errors are ignored: the caller's launcher kill is the fallback.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is numeric
}
