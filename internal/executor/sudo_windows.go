//go:build windows

package executor

// No supported backend runs on Windows, so privilege escalation is
// never attempted there. These stubs keep cross-compilation working.

func isRoot() bool {
	return false
}

func hasSudo() bool {
	return false
}
