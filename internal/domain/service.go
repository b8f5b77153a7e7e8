package domain

import (
	"net/url"
	"strings"
	"time"
)

// Service is the validated, in-memory representation of one service
// definition file.
//
// It is the unit the registry stores, the prober checks and the wake
// dispatcher acts on. A Service is never mutated after load: a changed
// definition file produces a fresh Service that replaces the old one
// wholesale, so derived state (such as the hostname index) is always
// rebuilt rather than patched.
type Service struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// Name is derived once from the definition file's base name.
	// Example: configs/jellyfin.yml -> jellyfin
	Name string

	// ─────────────────────────────
	// Wake & probe target
	// ─────────────────────────────

	// HostAddr is the address probed for TCP reachability.
	HostAddr string

	// HostPort is the port probed for reachability (default 22).
	HostPort int

	// MACAddr is the hardware address the magic packet is sent to.
	MACAddr string

	// BroadcastAddr is the broadcast address the magic packet is
	// addressed to (default 255.255.255.255).
	BroadcastAddr string

	// ─────────────────────────────
	// Routing
	// ─────────────────────────────

	// AppURL is the redirect target once the host is online. Its
	// hostname is what routes incoming requests to this service.
	AppURL string

	// IgnoredPaths are request path prefixes that must never trigger a
	// wake (background pollers, sync agents). Stored without a leading
	// slash.
	IgnoredPaths []string

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// Source records where this Service was loaded from and the
	// modification time observed at load, used to detect staleness.
	Source Source
}

// Source identifies the definition file backing a Service.
type Source struct {
	// Path is the definition file path.
	Path string

	// ModTime is the file's modification time captured at load. The
	// zero value means "unknown" and is always treated as stale.
	ModTime time.Time
}

// Hostname returns the routable hostname derived from AppURL, lowercased,
// or "" when AppURL yields no parseable hostname.
func (s *Service) Hostname() string {
	return HostnameFromURL(s.AppURL)
}

// IsIgnored reports whether the request path matches one of the service's
// ignored prefixes. The comparison is a plain prefix test with any leading
// slash stripped from the request path, mirroring how IgnoredPaths are
// normalized at load. It is not segment-aware: an ignored prefix "sync"
// matches "/synchronize" too.
func (s *Service) IsIgnored(path string) bool {
	path = strings.TrimPrefix(path, "/")
	for _, prefix := range s.IgnoredPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// HostnameFromURL extracts the lowercased hostname from a URL string.
// Returns "" when the URL cannot be parsed or carries no host.
func HostnameFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
