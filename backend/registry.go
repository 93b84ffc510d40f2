package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/bloom"
)

// Factory opens a device.
type Factory func() (Device, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Default (first that opens wins).
	priority = []string{NameWGPU, NameSoftware}
)

// Register registers a device factory under name, replacing any previous one.
// It is typically called from init functions in device packages.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a device factory. This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered device names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a device with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens the named device.
func Open(name string) (Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotAvailable, name)
	}
	dev, err := factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotAvailable, name, err)
	}
	return dev, nil
}

// Default opens the best available device. Devices are tried in priority
// order (wgpu, then software), then any other registered device.
// A device that fails to open is logged and skipped.
func Default() (Device, error) {
	tried := make(map[string]bool, len(priority))
	for _, name := range priority {
		tried[name] = true
		if !IsRegistered(name) {
			continue
		}
		dev, err := Open(name)
		if err == nil {
			return dev, nil
		}
		bloom.Logger().Warn("backend: device unavailable, falling back", "device", name, "err", err)
	}

	for _, name := range Available() {
		if tried[name] {
			continue
		}
		if dev, err := Open(name); err == nil {
			return dev, nil
		}
	}
	return nil, ErrNotAvailable
}
