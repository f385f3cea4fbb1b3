package executor

import (
	"os"
	"runtime"
	"testing"
)

func TestIsRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no privilege escalation on windows")
	}
	got := IsRoot()
	want := os.Geteuid() == 0
	if got != want {
		t.Errorf("IsRoot() = %v, want %v", got, want)
	}
}

func TestCanElevate(t *testing.T) {
	if IsRoot() && !CanElevate() {
		t.Error("CanElevate() should be true when running as root")
	}
}

func TestCheckPrivileges(t *testing.T) {
	if err := CheckPrivileges(false); err != nil {
		t.Errorf("CheckPrivileges(false) = %v, want nil", err)
	}
	if CanElevate() {
		if err := CheckPrivileges(true); err != nil {
			t.Errorf("CheckPrivileges(true) with elevation available = %v, want nil", err)
		}
	}
}

func TestErrNoPrivileges(t *testing.T) {
	if ErrNoPrivileges.Error() == "" {
		t.Error("ErrNoPrivileges.Error() should be non-empty")
	}
}
