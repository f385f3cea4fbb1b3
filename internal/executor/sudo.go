package executor

// IsRoot reports whether the current process runs as root.
func IsRoot() bool {
	return isRoot()
}

// CanElevate reports whether the process can obtain root, either by
// already being root or through sudo.
func CanElevate() bool {
	return isRoot() || hasSudo()
}

// CheckPrivileges returns ErrNoPrivileges when an operation needs root
// and the process cannot elevate.
func CheckPrivileges(needsSudo bool) error {
	if !needsSudo {
		return nil
	}
	if !CanElevate() {
		return ErrNoPrivileges
	}
	return nil
}

type errNoPrivileges struct{}

func (errNoPrivileges) Error() string {
	return "this operation requires root privileges, but neither running as root nor sudo is available"
}

// ErrNoPrivileges is returned when root is required but unavailable.
var ErrNoPrivileges = errNoPrivileges{}
