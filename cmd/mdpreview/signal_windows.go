//go:build windows

package main

import "os"

// shutdownSignals stop a running command. SIGTERM does not exist on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
