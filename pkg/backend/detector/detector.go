// Package detector identifies the host platform and suggests which
// backend natively manages it.
package detector

import (
	"os"
	"runtime"
)

// Host describes the platform the tool is running on. Fields that
// cannot be determined are left empty.
type Host struct {
	OS         string   // runtime.GOOS
	Arch       string   // runtime.GOARCH
	Distro     string   // os-release ID, or "macos" on Darwin
	Family     []string // os-release ID_LIKE
	PrettyName string
	Version    string // os-release VERSION_ID
}

// distroBackends maps os-release IDs to the backend tag that natively
// manages the distribution.
var distroBackends = map[string]string{
	// Debian family
	"debian":     "apt",
	"ubuntu":     "apt",
	"linuxmint":  "apt",
	"pop":        "apt",
	"elementary": "apt",
	"kali":       "apt",
	"raspbian":   "apt",

	// Red Hat family
	"fedora":    "dnf",
	"rhel":      "dnf",
	"centos":    "dnf",
	"rocky":     "dnf",
	"almalinux": "dnf",

	// Arch family
	"arch":        "pacman",
	"manjaro":     "pacman",
	"endeavouros": "pacman",
	"garuda":      "pacman",
	"artix":       "pacman",
	"cachyos":     "pacman",

	// SUSE family
	"opensuse":            "zypper",
	"opensuse-leap":       "zypper",
	"opensuse-tumbleweed": "zypper",
	"sles":                "zypper",

	"alpine": "apk",
	"macos":  "brew",
}

// Detect inspects the running host. Detection is best effort and never
// fails: an unrecognizable host simply yields no suggestion.
func Detect() Host {
	host := Host{OS: runtime.GOOS, Arch: runtime.GOARCH}

	switch runtime.GOOS {
	case "linux":
		for _, path := range []string{"/etc/os-release", "/usr/lib/os-release"} {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			applyOSRelease(&host, string(data))
			break
		}
		if host.Distro == "" {
			host.Distro = releaseFileDistro()
		}
	case "darwin":
		host.Distro = "macos"
		host.PrettyName = "macOS"
	}

	return host
}

// Suggested returns the tag of the backend that natively manages this
// host, or "" when none of the bundled backends does. The distribution
// ID is checked first, then the ID_LIKE family, so derivatives such as
// Linux Mint resolve through their parent.
func (h Host) Suggested() string {
	if tag, ok := distroBackends[h.Distro]; ok {
		return tag
	}
	for _, family := range h.Family {
		if tag, ok := distroBackends[family]; ok {
			return tag
		}
	}
	return ""
}
