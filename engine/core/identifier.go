package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// The identifier registry tracks live GPU-side resources so leaks show up
// at shutdown instead of in a validation layer dump. Every wrapper that
// owns a Vulkan handle acquires an identifier at creation and releases it
// on destroy.

type identifierEntry struct {
	name     string
	acquired time.Time
}

type identifierRegistry struct {
	mu      sync.Mutex
	entries map[string]identifierEntry
}

var identifierOnce sync.Once
var identifiers *identifierRegistry

func getIdentifiers() *identifierRegistry {
	identifierOnce.Do(func() {
		identifiers = &identifierRegistry{
			entries: make(map[string]identifierEntry),
		}
	})
	return identifiers
}

// IdentifierAcquire registers a live resource under a fresh unique id.
// The name is a human readable tag for leak reports; it does not need to
// be unique.
func IdentifierAcquire(name string) string {
	r := getIdentifiers()
	id := uuid.New().String()
	if name == "" {
		name = "resource-" + id[:8]
	}
	r.mu.Lock()
	r.entries[id] = identifierEntry{name: name, acquired: time.Now()}
	r.mu.Unlock()
	return id
}

// IdentifierRelease removes a resource from the registry. Releasing an
// unknown or already released id is an error; it usually means a double
// destroy.
func IdentifierRelease(id string) error {
	if id == "" {
		return nil
	}
	r := getIdentifiers()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("identifier %q was never acquired or is already released", id)
	}
	delete(r.entries, id)
	return nil
}

// IdentifierLiveCount returns how many resources are currently registered.
func IdentifierLiveCount() int {
	r := getIdentifiers()
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IdentifierLeaked returns the names of all still-registered resources,
// sorted for stable log output. Empty when everything was released.
func IdentifierLeaked() []string {
	r := getIdentifiers()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}
