package backend

import (
	"errors"
	"fmt"
	"strings"
)

// SplitTarget resolves the backend tag and package names from mutation
// arguments. "tag:pkg" pins the backend explicitly; a leading argument
// naming a known backend does the same; bare names fall back to the
// given default. Pinned arguments must all agree on one backend, since
// a mutation addresses exactly one.
func SplitTarget(args []string, fallback string, known func(string) bool) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, errors.New("no packages named")
	}

	var tag string
	var pkgs []string
	for _, arg := range args {
		prefix, name, found := strings.Cut(arg, ":")
		if !found || prefix == "" || name == "" {
			pkgs = append(pkgs, arg)
			continue
		}
		if tag != "" && tag != prefix {
			return "", nil, fmt.Errorf("one backend per command: %s and %s both named", tag, prefix)
		}
		tag = prefix
		pkgs = append(pkgs, name)
	}

	if tag == "" && len(pkgs) > 1 && known(pkgs[0]) {
		tag, pkgs = pkgs[0], pkgs[1:]
	}
	if tag == "" {
		tag = fallback
	}
	if tag == "" {
		return "", nil, errors.New("no backend named and none detected; use tag:pkg")
	}
	if !known(tag) {
		return "", nil, fmt.Errorf("unknown backend %q", tag)
	}
	if len(pkgs) == 0 {
		return "", nil, errors.New("no packages named")
	}
	return tag, pkgs, nil
}

// DefaultTarget picks the backend bare package names go to: the first
// preferred tag that is active, else the only active backend, else "".
func DefaultTarget(r *Registry, preferred ...string) string {
	for _, tag := range preferred {
		if tag == "" {
			continue
		}
		if _, ok := r.Get(tag); ok {
			return tag
		}
	}
	if tags := r.Tags(); len(tags) == 1 {
		return tags[0]
	}
	return ""
}
