package detector

import (
	"bufio"
	"os"
	"strings"
)

// applyOSRelease fills host fields from os-release(5) content. Values
// may be quoted; ID_LIKE is a space-separated list of related IDs.
func applyOSRelease(host *Host, content string) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		value := strings.Trim(parts[1], `"'`)
		switch parts[0] {
		case "ID":
			host.Distro = value
		case "ID_LIKE":
			host.Family = strings.Fields(value)
		case "VERSION_ID":
			host.Version = value
		case "PRETTY_NAME":
			host.PrettyName = value
		}
	}
}

// releaseFileDistro probes the per-distribution release files hosts
// without os-release still ship.
func releaseFileDistro() string {
	files := []struct {
		path   string
		distro string
	}{
		{"/etc/arch-release", "arch"},
		{"/etc/debian_version", "debian"},
		{"/etc/fedora-release", "fedora"},
		{"/etc/centos-release", "centos"},
		{"/etc/redhat-release", "rhel"},
		{"/etc/alpine-release", "alpine"},
		{"/etc/SuSE-release", "opensuse"},
	}

	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			return f.distro
		}
	}
	return ""
}
