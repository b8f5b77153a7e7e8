package domain

import "testing"

func TestIsIgnored(t *testing.T) {
	svc := &Service{
		Name:         "nas",
		IgnoredPaths: []string{"sync", "backup"},
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{
			name: "prefix with leading slash",
			path: "/sync/full",
			want: true,
		},
		{
			name: "prefix without leading slash",
			path: "backup/log",
			want: true,
		},
		{
			name: "unrelated path",
			path: "/other",
			want: false,
		},
		{
			name: "empty path",
			path: "/",
			want: false,
		},
		{
			name: "prefix match is not segment aware",
			path: "/synchronize",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsIgnored(tt.path); got != tt.want {
				t.Errorf("IsIgnored(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsIgnoredNoPrefixes(t *testing.T) {
	svc := &Service{Name: "nas"}
	if svc.IsIgnored("/sync/full") {
		t.Error("IsIgnored() should be false when no prefixes are configured")
	}
}

func TestHostnameFromURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "url with port",
			raw:  "http://jellyfin.local:8096",
			want: "jellyfin.local",
		},
		{
			name: "url without port",
			raw:  "https://nas.domain.ext",
			want: "nas.domain.ext",
		},
		{
			name: "uppercase host is lowered",
			raw:  "http://Jellyfin.Local",
			want: "jellyfin.local",
		},
		{
			name: "ip host",
			raw:  "http://10.0.0.5:9000",
			want: "10.0.0.5",
		},
		{
			name: "no host",
			raw:  "not a url",
			want: "",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HostnameFromURL(tt.raw); got != tt.want {
				t.Errorf("HostnameFromURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestServiceHostname(t *testing.T) {
	svc := &Service{Name: "jellyfin", AppURL: "http://jellyfin.local:8096"}
	if got := svc.Hostname(); got != "jellyfin.local" {
		t.Errorf("Hostname() = %q, want %q", got, "jellyfin.local")
	}
}
