package backend

import "context"

// Backend is the uniform contract every package-manager adapter
// satisfies. Orchestration code never sees concrete adapter types:
// the registry hands out Backend values and the coordinator drives
// them through this interface alone.
//
// All operations honor context cancellation; the coordinator bounds
// every call with a deadline, and adapters run subprocesses through
// exec.CommandContext so an expired deadline kills the underlying tool.
type Backend interface {
	// Tag returns the registry key for this backend (e.g. "apt").
	Tag() string

	// DisplayName returns a human-readable name (e.g. "APT (Debian/Ubuntu)").
	DisplayName() string

	// NeedsSudo reports whether mutating operations require root.
	NeedsSudo() bool

	// Initialize verifies the underlying tool is present and invocable
	// on this host. A failure excludes the backend from the registry
	// but never aborts discovery of the others.
	Initialize(ctx context.Context) error

	// Search returns packages matching the query. Matching semantics
	// are backend-defined; see each adapter's documentation.
	Search(ctx context.Context, query string) ([]PackageInfo, error)

	// Install installs the named packages in the given order.
	Install(ctx context.Context, packages []string) error

	// Remove uninstalls the named packages in the given order.
	Remove(ctx context.Context, packages []string) error

	// UpdateSystem applies all pending upgrades for this backend.
	// Idempotent: a second call with no intervening change succeeds as
	// a no-op.
	UpdateSystem(ctx context.Context) error

	// Updates returns pending upgrades without applying them.
	Updates(ctx context.Context) ([]PackageUpdate, error)

	// Installed returns the packages currently installed via this
	// backend.
	Installed(ctx context.Context) ([]PackageInfo, error)
}
