package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParseHostNoPort(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "host with port", in: "jellyfin.local:8096", want: "jellyfin.local"},
		{name: "bare host", in: "jellyfin.local", want: "jellyfin.local"},
		{name: "ip with port", in: "192.168.1.50:443", want: "192.168.1.50"},
		{name: "ipv6 with port", in: "[::1]:8080", want: "::1"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseHostNoPort(tt.in); got != tt.want {
				t.Errorf("ParseHostNoPort(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFirstForwardedFor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single entry", in: "10.0.0.2", want: "10.0.0.2"},
		{name: "multiple entries", in: "10.0.0.2, 172.16.0.1", want: "10.0.0.2"},
		{name: "spaces", in: "  10.0.0.2 ,172.16.0.1", want: "10.0.0.2"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstForwardedFor(tt.in); got != tt.want {
				t.Errorf("FirstForwardedFor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "http://jellyfin.local/", nil)
	req.RemoteAddr = "172.16.0.1:54321"
	req.Header.Set("X-Forwarded-For", "10.0.0.2, 172.16.0.1")
	req.Header.Set("X-Real-IP", "10.0.0.9")

	if got := ClientIP(req, true); got != "10.0.0.2" {
		t.Errorf("ClientIP(trustProxy) = %q, want %q", got, "10.0.0.2")
	}
	if got := ClientIP(req, false); got != "172.16.0.1" {
		t.Errorf("ClientIP(no proxy) = %q, want %q", got, "172.16.0.1")
	}

	req.Header.Del("X-Forwarded-For")
	if got := ClientIP(req, true); got != "10.0.0.9" {
		t.Errorf("ClientIP(X-Real-IP fallback) = %q, want %q", got, "10.0.0.9")
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"192.168.1.0/24", "10.0.0.5", " ", ""})

	if m.IsEmpty() {
		t.Fatal("IsEmpty() = true, want false")
	}
	if !m.Allow("192.168.1.77") {
		t.Error("Allow() should match an address inside the CIDR")
	}
	if !m.Allow("10.0.0.5") {
		t.Error("Allow() should match an exact IP")
	}
	if m.Allow("172.16.0.1") {
		t.Error("Allow() should reject an address outside the list")
	}
	if m.Allow("not-an-ip") {
		t.Error("Allow() should reject garbage input")
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("IsEmpty() = false for an empty matcher")
	}
}
