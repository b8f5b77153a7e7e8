package configdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/rouse/internal/domain"
)

// ErrInvalid marks a config file that exists but cannot be used:
// malformed YAML, not a mapping, or missing required keys.
var ErrInvalid = errors.New("invalid service config")

const (
	defaultPort      = 22
	defaultBroadcast = "255.255.255.255"
	configExt        = ".yml"
)

// fileSchema mirrors the on-disk YAML shape. Required keys use
// pointers so a missing key can be told apart from a zero value.
type fileSchema struct {
	HostMAC      *string  `yaml:"HOST_MAC"`
	HostIP       *string  `yaml:"HOST_IP"`
	AppURL       *string  `yaml:"APP_URL"`
	HostPort     *int     `yaml:"HOST_PORT"`
	BroadcastIP  *string  `yaml:"BROADCAST_IP"`
	IgnoredPaths []string `yaml:"IGNORED_PATHS"`
}

// schemaKeys lists every key a definition file may set. A file with
// any other key is invalid as a whole.
var schemaKeys = map[string]bool{
	"HOST_MAC":      true,
	"HOST_IP":       true,
	"APP_URL":       true,
	"HOST_PORT":     true,
	"BROADCAST_IP":  true,
	"IGNORED_PATHS": true,
}

// Loader reads per-service YAML files from a single directory.
type Loader struct {
	dir string
}

// New creates a loader rooted at dir.
func New(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the directory the loader reads from.
func (l *Loader) Dir() string {
	return l.dir
}

// Paths lists the service config files currently present, sorted by
// filename. Only regular files with the .yml extension count.
func (l *Loader) Paths() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), configExt) {
			continue
		}
		paths = append(paths, filepath.Join(l.dir, entry.Name()))
	}
	return paths, nil
}

// ModTime returns the file's modification time, or the zero time when
// the file cannot be statted. The zero time never equals a real mtime,
// so an unreadable file always looks stale.
func (l *Loader) ModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Load reads and validates one service config file. The service name
// is the file's basename without its extension. Missing files surface
// as fs.ErrNotExist; anything else wrong with the content wraps
// ErrInvalid.
func (l *Loader) Load(path string) (*domain.Service, error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, configExt)

	// Stat before reading so a write racing the read shows up as
	// stale on the next pass instead of being missed.
	mod := l.ModTime(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", base, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, base, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrInvalid, base)
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: not a mapping", ErrInvalid, base)
	}

	// Mapping content alternates key and value nodes.
	mapping := doc.Content[0]
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if key := mapping.Content[i].Value; !schemaKeys[key] {
			return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalid, base, key)
		}
	}

	var raw fileSchema
	if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, base, err)
	}

	if raw.HostMAC == nil || *raw.HostMAC == "" {
		return nil, fmt.Errorf("%w: %s: missing HOST_MAC", ErrInvalid, base)
	}
	if raw.HostIP == nil || *raw.HostIP == "" {
		return nil, fmt.Errorf("%w: %s: missing HOST_IP", ErrInvalid, base)
	}
	if raw.AppURL == nil || *raw.AppURL == "" {
		return nil, fmt.Errorf("%w: %s: missing APP_URL", ErrInvalid, base)
	}
	if domain.HostnameFromURL(*raw.AppURL) == "" {
		return nil, fmt.Errorf("%w: %s: APP_URL has no hostname", ErrInvalid, base)
	}

	port := defaultPort
	if raw.HostPort != nil {
		port = *raw.HostPort
	}

	broadcast := defaultBroadcast
	if raw.BroadcastIP != nil && *raw.BroadcastIP != "" {
		broadcast = *raw.BroadcastIP
	}

	ignored := make([]string, 0, len(raw.IgnoredPaths))
	for _, p := range raw.IgnoredPaths {
		ignored = append(ignored, strings.TrimPrefix(p, "/"))
	}

	return &domain.Service{
		Name:          name,
		HostAddr:      *raw.HostIP,
		HostPort:      port,
		MACAddr:       *raw.HostMAC,
		BroadcastAddr: broadcast,
		AppURL:        *raw.AppURL,
		IgnoredPaths:  ignored,
		Source: domain.Source{
			Path:    path,
			ModTime: mod,
		},
	}, nil
}
