// Package backend provides the uniform contract over host package
// managers, the registry of active backends, the fan-out coordinator,
// and the per-backend result cache.
package backend

// PackageInfo identifies one package as known to a specific backend.
// Version strings are opaque here; only backend-specific code may
// interpret them.
type PackageInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"` // Backend tag: "apt", "pacman", etc.
	Installed   bool   `json:"installed,omitempty"`
}

// PackageUpdate identifies a package with an available newer version.
type PackageUpdate struct {
	Name      string `json:"name"`
	Current   string `json:"current"`
	Candidate string `json:"candidate"`
	Source    string `json:"source"`
	Security  bool   `json:"security,omitempty"` // Backend flagged this as a security update
}

// InitFailure records why one backend was excluded during discovery.
type InitFailure struct {
	Tag string
	Err error
}

// BackendFailure records one backend's failure during a coordinated
// operation. Failures ride alongside merged results so callers can
// report exactly which backends did not answer.
type BackendFailure struct {
	Tag string
	Err error
}
