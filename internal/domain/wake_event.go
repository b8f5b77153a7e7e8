package domain

import "time"

// WakeEvent records one issued wake signal. Events are appended to the
// local audit file and, when the Redis mirror is enabled, stored there for
// the recent-wakes API.
type WakeEvent struct {
	// ID is a random unique identifier assigned when the event is mirrored.
	ID string `json:"id"`

	// Service is the name of the service that was woken.
	Service string `json:"service"`

	// Hostname is the request hostname that resolved to the service.
	Hostname string `json:"hostname"`

	// MACAddr is the hardware address the magic packet was sent to.
	MACAddr string `json:"mac_addr"`

	// ClientAddr is the requesting client, honoring forwarded headers
	// when running behind a trusted proxy.
	ClientAddr string `json:"client_addr"`

	// Path is the request path that triggered the wake.
	Path string `json:"path"`

	// At is when the wake signal was issued.
	At time.Time `json:"at"`
}
