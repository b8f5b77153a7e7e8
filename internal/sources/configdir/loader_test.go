package configdir

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeConfig(t, tmpDir, "jellyfin.yml", `---
HOST_MAC: "aa:bb:cc:dd:ee:ff"
HOST_IP: "192.168.1.50"
APP_URL: "http://jellyfin.local:8096"
HOST_PORT: 8096
BROADCAST_IP: "192.168.1.255"
IGNORED_PATHS:
  - /sync
  - metrics
`)

	loader := New(tmpDir)
	svc, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if svc.Name != "jellyfin" {
		t.Errorf("Name = %q, want %q", svc.Name, "jellyfin")
	}
	if svc.MACAddr != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("MACAddr = %q, want %q", svc.MACAddr, "aa:bb:cc:dd:ee:ff")
	}
	if svc.HostAddr != "192.168.1.50" {
		t.Errorf("HostAddr = %q, want %q", svc.HostAddr, "192.168.1.50")
	}
	if svc.HostPort != 8096 {
		t.Errorf("HostPort = %d, want %d", svc.HostPort, 8096)
	}
	if svc.BroadcastAddr != "192.168.1.255" {
		t.Errorf("BroadcastAddr = %q, want %q", svc.BroadcastAddr, "192.168.1.255")
	}
	if svc.Hostname() != "jellyfin.local" {
		t.Errorf("Hostname() = %q, want %q", svc.Hostname(), "jellyfin.local")
	}
	if len(svc.IgnoredPaths) != 2 || svc.IgnoredPaths[0] != "sync" || svc.IgnoredPaths[1] != "metrics" {
		t.Errorf("IgnoredPaths = %v, want [sync metrics]", svc.IgnoredPaths)
	}
	if svc.Source.Path != path {
		t.Errorf("Source.Path = %q, want %q", svc.Source.Path, path)
	}
	if svc.Source.ModTime.IsZero() {
		t.Error("Source.ModTime should be set for a readable file")
	}
}

func TestLoaderLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeConfig(t, tmpDir, "nas.yml", `---
HOST_MAC: "aa:bb:cc:dd:ee:ff"
HOST_IP: "192.168.1.60"
APP_URL: "http://nas.local"
`)

	loader := New(tmpDir)
	svc, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if svc.HostPort != 22 {
		t.Errorf("HostPort = %d, want default 22", svc.HostPort)
	}
	if svc.BroadcastAddr != "255.255.255.255" {
		t.Errorf("BroadcastAddr = %q, want default 255.255.255.255", svc.BroadcastAddr)
	}
	if len(svc.IgnoredPaths) != 0 {
		t.Errorf("IgnoredPaths = %v, want empty", svc.IgnoredPaths)
	}
}

func TestLoaderLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty file",
			content: "",
		},
		{
			name:    "not a mapping",
			content: "- one\n- two\n",
		},
		{
			name:    "malformed yaml",
			content: "HOST_MAC: [unclosed\n",
		},
		{
			name:    "missing HOST_MAC",
			content: "HOST_IP: \"192.168.1.50\"\nAPP_URL: \"http://a.local\"\n",
		},
		{
			name:    "missing HOST_IP",
			content: "HOST_MAC: \"aa:bb:cc:dd:ee:ff\"\nAPP_URL: \"http://a.local\"\n",
		},
		{
			name:    "missing APP_URL",
			content: "HOST_MAC: \"aa:bb:cc:dd:ee:ff\"\nHOST_IP: \"192.168.1.50\"\n",
		},
		{
			name:    "empty HOST_MAC",
			content: "HOST_MAC: \"\"\nHOST_IP: \"192.168.1.50\"\nAPP_URL: \"http://a.local\"\n",
		},
		{
			name:    "null HOST_MAC",
			content: "HOST_MAC: null\nHOST_IP: \"192.168.1.50\"\nAPP_URL: \"http://a.local\"\n",
		},
		{
			name:    "HOST_IP key without value",
			content: "HOST_MAC: \"aa:bb:cc:dd:ee:ff\"\nHOST_IP:\nAPP_URL: \"http://a.local\"\n",
		},
		{
			name:    "tilde APP_URL",
			content: "HOST_MAC: \"aa:bb:cc:dd:ee:ff\"\nHOST_IP: \"192.168.1.50\"\nAPP_URL: ~\n",
		},
		{
			name:    "APP_URL without hostname",
			content: "HOST_MAC: \"aa:bb:cc:dd:ee:ff\"\nHOST_IP: \"192.168.1.50\"\nAPP_URL: \"not a url\"\n",
		},
		{
			name:    "misspelled IGNORED_PATHS",
			content: "HOST_MAC: \"aa:bb:cc:dd:ee:ff\"\nHOST_IP: \"192.168.1.50\"\nAPP_URL: \"http://a.local\"\nIGNORED_PATH:\n  - /sync\n",
		},
		{
			name:    "unknown key",
			content: "HOST_MAC: \"aa:bb:cc:dd:ee:ff\"\nHOST_IP: \"192.168.1.50\"\nAPP_URL: \"http://a.local\"\nWAKE_PORT: 9\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			path := writeConfig(t, tmpDir, "bad.yml", tt.content)

			loader := New(tmpDir)
			_, err := loader.Load(path)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Load() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	loader := New(t.TempDir())
	_, err := loader.Load(filepath.Join(loader.Dir(), "ghost.yml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoaderPaths(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "b.yml", "x: 1\n")
	writeConfig(t, tmpDir, "a.yml", "x: 1\n")
	writeConfig(t, tmpDir, "notes.txt", "ignore me\n")
	writeConfig(t, tmpDir, "c.yaml", "wrong ext\n")
	if err := os.Mkdir(filepath.Join(tmpDir, "sub.yml"), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	loader := New(tmpDir)
	paths, err := loader.Paths()
	if err != nil {
		t.Fatalf("Paths() error = %v", err)
	}

	want := []string{
		filepath.Join(tmpDir, "a.yml"),
		filepath.Join(tmpDir, "b.yml"),
	}
	if len(paths) != len(want) {
		t.Fatalf("Paths() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Paths()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestLoaderPathsMissingDir(t *testing.T) {
	loader := New("/nonexistent/config/dir")
	_, err := loader.Paths()
	if err == nil {
		t.Error("Paths() with missing directory should return error")
	}
}

func TestLoaderModTime(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeConfig(t, tmpDir, "a.yml", "x: 1\n")

	loader := New(tmpDir)
	if loader.ModTime(path).IsZero() {
		t.Error("ModTime() should be non-zero for an existing file")
	}
	if !loader.ModTime(filepath.Join(tmpDir, "ghost.yml")).IsZero() {
		t.Error("ModTime() should be zero for a missing file")
	}
}
