package backend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newTestCoordinator(backends ...Backend) *Coordinator {
	registry := NewRegistry()
	for _, b := range backends {
		registry.Register(b)
	}
	return NewCoordinator(registry, 5*time.Second, 5*time.Second)
}

func TestSearchMergesInRegistrationOrder(t *testing.T) {
	apt := &MockBackend{tag: "apt", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return []PackageInfo{{Name: "vim", Version: "9.0", Source: "apt"}}, nil
	}}
	pacman := &MockBackend{tag: "pacman", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return []PackageInfo{{Name: "vim", Version: "9.1", Source: "pacman"}}, nil
	}}

	// Slow first backend: merge order must follow registration order,
	// not completion order.
	slowApt := &MockBackend{tag: "apt", searchFn: func(ctx context.Context, q string) ([]PackageInfo, error) {
		time.Sleep(50 * time.Millisecond)
		return apt.searchFn(ctx, q)
	}}

	res := newTestCoordinator(slowApt, pacman).Search(context.Background(), "vim")
	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", res.Failures)
	}
	if len(res.Packages) != 2 {
		t.Fatalf("got %d packages, want 2", len(res.Packages))
	}
	if res.Packages[0].Source != "apt" || res.Packages[1].Source != "pacman" {
		t.Errorf("merge order = [%s %s], want [apt pacman]",
			res.Packages[0].Source, res.Packages[1].Source)
	}
}

func TestSearchDeduplicatesByNameAndSource(t *testing.T) {
	apt := &MockBackend{tag: "apt", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return []PackageInfo{
			{Name: "vim", Version: "9.0", Source: "apt"},
			{Name: "vim", Version: "8.2", Source: "apt"}, // duplicate key, first wins
		}, nil
	}}
	pacman := &MockBackend{tag: "pacman", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return []PackageInfo{{Name: "vim", Version: "9.1", Source: "pacman"}}, nil
	}}

	res := newTestCoordinator(apt, pacman).Search(context.Background(), "vim")
	if len(res.Packages) != 2 {
		t.Fatalf("got %d packages, want 2 (same name from two sources is not a duplicate)", len(res.Packages))
	}
	if res.Packages[0].Version != "9.0" {
		t.Errorf("dedupe kept version %s, want first occurrence 9.0", res.Packages[0].Version)
	}
}

func TestSearchResultsBelongToActiveBackends(t *testing.T) {
	apt := &MockBackend{tag: "apt", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return []PackageInfo{{Name: "curl", Source: "apt"}}, nil
	}}
	dnf := &MockBackend{tag: "dnf", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return []PackageInfo{{Name: "curl", Source: "dnf"}}, nil
	}}

	coord := newTestCoordinator(apt, dnf)
	res := coord.Search(context.Background(), "curl")

	active := make(map[string]bool)
	for _, tag := range coord.Registry().Tags() {
		active[tag] = true
	}
	for _, p := range res.Packages {
		if !active[p.Source] {
			t.Errorf("result source %q is not an active backend", p.Source)
		}
	}
}

func TestSearchIsolatesFailingBackend(t *testing.T) {
	boom := errors.New("exit status 1")
	apt := &MockBackend{tag: "apt", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return []PackageInfo{{Name: "vim", Version: "9.0", Source: "apt"}}, nil
	}}
	pacman := &MockBackend{tag: "pacman", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return nil, boom
	}}

	res := newTestCoordinator(apt, pacman).Search(context.Background(), "vim")

	if len(res.Packages) != 1 || res.Packages[0].Source != "apt" {
		t.Fatalf("packages = %v, want the single apt result", res.Packages)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("failures = %v, want exactly one", res.Failures)
	}
	if res.Failures[0].Tag != "pacman" {
		t.Errorf("failure tag = %q, want pacman", res.Failures[0].Tag)
	}
	if !IsKind(res.Failures[0].Err, KindInvocationFailed) {
		t.Errorf("failure kind = %v, want invocation failure", res.Failures[0].Err)
	}
	if got, want := res.Summary(), "1 result (pacman unavailable)"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestSearchTimeoutDoesNotHang(t *testing.T) {
	stuck := &MockBackend{tag: "dnf", searchFn: func(ctx context.Context, _ string) ([]PackageInfo, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	apt := &MockBackend{tag: "apt", searchFn: func(_ context.Context, _ string) ([]PackageInfo, error) {
		return []PackageInfo{{Name: "vim", Source: "apt"}}, nil
	}}

	registry := NewRegistry()
	registry.Register(apt)
	registry.Register(stuck)
	coord := NewCoordinator(registry, 100*time.Millisecond, time.Second)

	start := time.Now()
	res := coord.Search(context.Background(), "vim")
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Fatalf("fan-out took %v, should complete shortly after the 100ms timeout", elapsed)
	}
	if len(res.Packages) != 1 {
		t.Fatalf("packages = %v, want the apt result", res.Packages)
	}
	if len(res.Failures) != 1 || res.Failures[0].Tag != "dnf" {
		t.Fatalf("failures = %v, want one dnf failure", res.Failures)
	}
	if !IsKind(res.Failures[0].Err, KindTimeout) {
		t.Errorf("failure = %v, want timeout kind", res.Failures[0].Err)
	}
}

func TestUpdatesFanOut(t *testing.T) {
	apt := &MockBackend{tag: "apt", updatesFn: func(_ context.Context) ([]PackageUpdate, error) {
		return []PackageUpdate{{Name: "openssl", Current: "3.0.1", Candidate: "3.0.2", Source: "apt", Security: true}}, nil
	}}
	brew := &MockBackend{tag: "brew", updatesFn: func(_ context.Context) ([]PackageUpdate, error) {
		return []PackageUpdate{{Name: "jq", Current: "1.6", Candidate: "1.7", Source: "brew"}}, nil
	}}

	res := newTestCoordinator(apt, brew).Updates(context.Background())
	if len(res.Updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(res.Updates))
	}
	if res.Updates[0].Source != "apt" || res.Updates[1].Source != "brew" {
		t.Errorf("merge order = [%s %s], want [apt brew]", res.Updates[0].Source, res.Updates[1].Source)
	}
	if got, want := res.Summary(), "2 updates"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestInstalledFanOut(t *testing.T) {
	apt := &MockBackend{tag: "apt", installedFn: func(_ context.Context) ([]PackageInfo, error) {
		return []PackageInfo{{Name: "bash", Version: "5.2", Source: "apt", Installed: true}}, nil
	}}

	res := newTestCoordinator(apt).Installed(context.Background())
	if len(res.Packages) != 1 || !res.Packages[0].Installed {
		t.Fatalf("packages = %v, want one installed bash entry", res.Packages)
	}
}

func TestInstallTargetsSingleBackend(t *testing.T) {
	var aptCalls, dnfCalls atomic.Int32
	apt := &MockBackend{tag: "apt", installFn: func(_ context.Context, _ []string) error {
		aptCalls.Add(1)
		return nil
	}}
	dnf := &MockBackend{tag: "dnf", installFn: func(_ context.Context, _ []string) error {
		dnfCalls.Add(1)
		return nil
	}}

	coord := newTestCoordinator(apt, dnf)
	if err := coord.Install(context.Background(), "dnf", []string{"htop"}); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if aptCalls.Load() != 0 || dnfCalls.Load() != 1 {
		t.Errorf("install calls: apt=%d dnf=%d, want apt=0 dnf=1", aptCalls.Load(), dnfCalls.Load())
	}
}

func TestMutateUnknownBackend(t *testing.T) {
	coord := newTestCoordinator(&MockBackend{tag: "apt"})
	err := coord.Remove(context.Background(), "pacman", []string{"vim"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Remove() error = %v, want ErrUnknownBackend", err)
	}
}

func TestUpdateSystemIdempotent(t *testing.T) {
	var calls atomic.Int32
	apt := &MockBackend{tag: "apt", updateFn: func(_ context.Context) error {
		calls.Add(1)
		return nil
	}}

	coord := newTestCoordinator(apt)
	for i := 0; i < 2; i++ {
		if err := coord.UpdateSystem(context.Background(), "apt"); err != nil {
			t.Fatalf("UpdateSystem() call %d error: %v", i+1, err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("backend saw %d calls, want 2", calls.Load())
	}
}

func TestUpdateAllCollectsFailures(t *testing.T) {
	apt := &MockBackend{tag: "apt"}
	dnf := &MockBackend{tag: "dnf", updateFn: func(_ context.Context) error {
		return errors.New("exit status 1")
	}}

	failures := newTestCoordinator(apt, dnf).UpdateAll(context.Background())
	if len(failures) != 1 || failures[0].Tag != "dnf" {
		t.Fatalf("failures = %v, want one dnf failure", failures)
	}
}
