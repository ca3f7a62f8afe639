package site

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Site{}
)

func init() {
	MustRegister(Avito)
}

// Register adds s to the registry after validating it
func Register(s Site) error {
	if err := Validate(s); err != nil {
		return err
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[s.Name()]; exists {
		return fmt.Errorf("site %s already registered", s.Name())
	}
	registry[s.Name()] = s
	return nil
}

// MustRegister is Register for built-in sites; an invalid site is a programming error
func MustRegister(s Site) {
	if err := Register(s); err != nil {
		panic(fmt.Sprintf("site: %v", err))
	}
}

// Lookup returns the registered site with the given name
func Lookup(name string) (Site, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSite, name)
	}
	return s, nil
}

// Names returns the registered site names, sorted
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
