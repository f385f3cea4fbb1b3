package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Coordinator executes logical operations against the registry's
// backends. Reads fan out to every backend concurrently and merge
// deterministically; mutations target exactly one backend chosen by
// the caller.
type Coordinator struct {
	registry      *Registry
	readTimeout   time.Duration
	mutateTimeout time.Duration
}

// NewCoordinator wraps a registry with per-call timeout bounds. Reads
// and mutations get separate bounds: queries should answer in seconds,
// while a full system upgrade legitimately runs for minutes.
func NewCoordinator(reg *Registry, readTimeout, mutateTimeout time.Duration) *Coordinator {
	return &Coordinator{
		registry:      reg,
		readTimeout:   readTimeout,
		mutateTimeout: mutateTimeout,
	}
}

// Registry returns the registry this coordinator dispatches to.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// SearchResult is the merged outcome of a search fan-out.
type SearchResult struct {
	Packages []PackageInfo
	Failures []BackendFailure
}

// Summary renders a one-line account, e.g. "3 results (apt unavailable)".
func (r SearchResult) Summary() string {
	return mergeSummary(len(r.Packages), "result", r.Failures)
}

// UpdatesResult is the merged outcome of an update-check fan-out.
type UpdatesResult struct {
	Updates  []PackageUpdate
	Failures []BackendFailure
}

// Summary renders a one-line account, e.g. "5 updates (dnf unavailable)".
func (r UpdatesResult) Summary() string {
	return mergeSummary(len(r.Updates), "update", r.Failures)
}

// InstalledResult is the merged outcome of an installed-list fan-out.
type InstalledResult struct {
	Packages []PackageInfo
	Failures []BackendFailure
}

// Summary renders a one-line account, e.g. "412 packages".
func (r InstalledResult) Summary() string {
	return mergeSummary(len(r.Packages), "package", r.Failures)
}

// Search fans the query out to every active backend and merges the
// results.
func (c *Coordinator) Search(ctx context.Context, query string) SearchResult {
	pkgs, failures := fanOut(ctx, c.registry.Active(), c.readTimeout, "search",
		func(ctx context.Context, b Backend) ([]PackageInfo, error) {
			return b.Search(ctx, query)
		},
		packageKey)
	return SearchResult{Packages: pkgs, Failures: failures}
}

// Updates fans the pending-update check out to every active backend.
func (c *Coordinator) Updates(ctx context.Context) UpdatesResult {
	ups, failures := fanOut(ctx, c.registry.Active(), c.readTimeout, "updates",
		func(ctx context.Context, b Backend) ([]PackageUpdate, error) {
			return b.Updates(ctx)
		},
		updateKey)
	return UpdatesResult{Updates: ups, Failures: failures}
}

// Installed fans the installed-package listing out to every active
// backend.
func (c *Coordinator) Installed(ctx context.Context) InstalledResult {
	pkgs, failures := fanOut(ctx, c.registry.Active(), c.readTimeout, "installed",
		func(ctx context.Context, b Backend) ([]PackageInfo, error) {
			return b.Installed(ctx)
		},
		packageKey)
	return InstalledResult{Packages: pkgs, Failures: failures}
}

// Install installs packages through the named backend.
func (c *Coordinator) Install(ctx context.Context, tag string, packages []string) error {
	return c.mutate(ctx, tag, "install", func(ctx context.Context, b Backend) error {
		return b.Install(ctx, packages)
	})
}

// Remove uninstalls packages through the named backend.
func (c *Coordinator) Remove(ctx context.Context, tag string, packages []string) error {
	return c.mutate(ctx, tag, "remove", func(ctx context.Context, b Backend) error {
		return b.Remove(ctx, packages)
	})
}

// UpdateSystem applies all pending upgrades for the named backend.
func (c *Coordinator) UpdateSystem(ctx context.Context, tag string) error {
	return c.mutate(ctx, tag, "update", func(ctx context.Context, b Backend) error {
		return b.UpdateSystem(ctx)
	})
}

// UpdateAll upgrades every active backend in registration order,
// collecting per-backend failures. Sequential on purpose: concurrent
// package-database mutations on one host are not safe.
func (c *Coordinator) UpdateAll(ctx context.Context) []BackendFailure {
	var failures []BackendFailure
	for _, b := range c.registry.Active() {
		if err := c.UpdateSystem(ctx, b.Tag()); err != nil {
			failures = append(failures, BackendFailure{Tag: b.Tag(), Err: err})
		}
	}
	return failures
}

func (c *Coordinator) mutate(ctx context.Context, tag, op string, call func(context.Context, Backend) error) error {
	b, ok := c.registry.Get(tag)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, tag)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.mutateTimeout)
	defer cancel()
	if err := call(callCtx, b); err != nil {
		return Classify(callCtx, tag, op, err, "")
	}
	return nil
}

type mergeKey struct {
	name   string
	source string
}

func packageKey(p PackageInfo) mergeKey {
	return mergeKey{name: p.Name, source: p.Source}
}

func updateKey(u PackageUpdate) mergeKey {
	return mergeKey{name: u.Name, source: u.Source}
}

// fanOut runs one read operation against every backend concurrently,
// each call bounded by its own deadline, and joins all outcomes before
// merging. Successful slices concatenate in registration order and
// deduplicate by (name, source), first occurrence kept. Failures never
// abort the merge; they are classified and collected in backend order.
func fanOut[T any](ctx context.Context, backends []Backend, timeout time.Duration, op string,
	call func(context.Context, Backend) ([]T, error), key func(T) mergeKey) ([]T, []BackendFailure) {

	type outcome struct {
		items []T
		err   error
	}
	outcomes := make([]outcome, len(backends))

	var wg sync.WaitGroup
	for i, b := range backends {
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			items, err := call(callCtx, b)
			if err != nil {
				err = Classify(callCtx, b.Tag(), op, err, "")
			}
			outcomes[i] = outcome{items: items, err: err}
		}(i, b)
	}
	wg.Wait()

	var merged []T
	var failures []BackendFailure
	seen := make(map[mergeKey]struct{})
	for i, b := range backends {
		o := outcomes[i]
		if o.err != nil {
			failures = append(failures, BackendFailure{Tag: b.Tag(), Err: o.err})
			continue
		}
		for _, item := range o.items {
			k := key(item)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged, failures
}

func mergeSummary(n int, noun string, failures []BackendFailure) string {
	label := noun
	if n != 1 {
		label += "s"
	}
	s := fmt.Sprintf("%d %s", n, label)
	if len(failures) == 0 {
		return s
	}
	tags := make([]string, len(failures))
	for i, f := range failures {
		tags[i] = f.Tag
	}
	return fmt.Sprintf("%s (%s unavailable)", s, strings.Join(tags, ", "))
}
