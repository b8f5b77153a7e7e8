package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/rouse/internal/domain"
)

var (
	// ErrNotFound marks a lookup for a name or source that is not registered.
	ErrNotFound = errors.New("service not found")

	// ErrAmbiguous marks a source path claimed by more than one record.
	// Reconciliation keeps paths unique, so hitting this means the
	// registry is inconsistent and the operation must not guess.
	ErrAmbiguous = errors.New("ambiguous source path")
)

// Registry is the in-memory source of truth for wakeable services.
// It keeps a name map plus a derived hostname index so the gateway can
// route requests by Host header without scanning.
type Registry struct {
	mu        sync.RWMutex
	services  map[string]*domain.Service // name -> Service
	hostnames map[string]string          // hostname -> name
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		services:  make(map[string]*domain.Service),
		hostnames: make(map[string]string),
	}
}

// Register adds or replaces a service under its name. An existing
// record with the same name is unregistered first so its hostname
// entry never survives a reload that changed the URL. Returns the name
// of a different service whose hostname entry was overwritten, or ""
// when there was no collision.
func (r *Registry) Register(svc *domain.Service) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[svc.Name]; ok {
		r.unregisterLocked(svc.Name)
	}

	r.services[svc.Name] = svc

	displaced := ""
	if host := svc.Hostname(); host != "" {
		if prev, ok := r.hostnames[host]; ok && prev != svc.Name {
			displaced = prev
		}
		r.hostnames[host] = svc.Name
	}
	return displaced
}

// Unregister removes a service by name. Its hostname entry is removed
// only while it still points at this name, so an entry taken over by a
// newer record stays intact.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	r.unregisterLocked(name)
	return nil
}

func (r *Registry) unregisterLocked(name string) {
	svc := r.services[name]
	delete(r.services, name)

	if host := svc.Hostname(); host != "" {
		if owner, ok := r.hostnames[host]; ok && owner == name {
			delete(r.hostnames, host)
		}
	}
}

// Get retrieves a service by name.
func (r *Registry) Get(name string) (*domain.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	return svc, ok
}

// LookupHostname retrieves the service that owns a request hostname.
func (r *Registry) LookupHostname(hostname string) (*domain.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.hostnames[hostname]
	if !ok {
		return nil, false
	}
	svc, ok := r.services[name]
	return svc, ok
}

// All returns every registered service, sorted by name.
func (r *Registry) All() []*domain.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]*domain.Service, 0, len(r.services))
	for _, svc := range r.services {
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].Name < services[j].Name
	})
	return services
}

// Count returns the number of registered services.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.services)
}

// Reset drops every record and index entry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services = make(map[string]*domain.Service)
	r.hostnames = make(map[string]string)
}

// ─────────────────────────────────────────────────────────────────
// Source tracking
// ─────────────────────────────────────────────────────────────────

// Sources returns the source paths backing the registered services,
// sorted for stable iteration.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.services))
	for _, svc := range r.services {
		paths = append(paths, svc.Source.Path)
	}
	sort.Strings(paths)
	return paths
}

// NameForSource resolves a source path back to the service it loaded.
func (r *Registry) NameForSource(path string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := ""
	for name, svc := range r.services {
		if svc.Source.Path != path {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("%w: %s claimed by %s and %s", ErrAmbiguous, path, found, name)
		}
		found = name
	}
	if found == "" {
		return "", fmt.Errorf("%w: no service for %s", ErrNotFound, path)
	}
	return found, nil
}

// Markers returns the freshness marker recorded for each source path.
func (r *Registry) Markers() map[string]time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	markers := make(map[string]time.Time, len(r.services))
	for _, svc := range r.services {
		markers[svc.Source.Path] = svc.Source.ModTime
	}
	return markers
}
