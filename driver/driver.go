// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines a set of interfaces encompassing
// common GPU functionality.
// It is designed to allow platform-specific APIs to be
// implemented in a mostly straightforward manner.
package driver

import (
	"errors"
	"log"
	"sync"
)

// Driver loads and unloads a concrete GPU backend.
type Driver interface {
	// Open initializes the driver.
	// If it succeeds, further calls with the same receiver
	// have no effect and must return the same GPU instance.
	// Callers should assume that Open is not safe for
	// parallel execution.
	Open() (GPU, error)

	// Name returns the name of the driver.
	// It must not cause the driver to be opened.
	Name() string

	// Close deinitializes the driver.
	// Closing a driver that is not open has no effect.
	// Callers should assume that Close is not safe for
	// parallel execution.
	Close()
}

// Sentinel errors a Driver implementation translates its backend's
// own failure codes into.
var (
	// ErrNotInstalled means that a platform-specific library
	// required for the driver to work is not present in the
	// system.
	ErrNotInstalled = errors.New("driver: missing required library")

	// ErrNoDevice means that no suitable device could be found.
	ErrNoDevice = errors.New("driver: no suitable device found")

	// ErrNoHostMemory means that host memory could not be allocated.
	ErrNoHostMemory = errors.New("driver: out of host memory")

	// ErrNoDeviceMemory means that device memory could not be
	// allocated.
	ErrNoDeviceMemory = errors.New("driver: out of device memory")

	// ErrFatal means that the driver is in an unrecoverable state.
	// Upon encountering such an error, the application must destroy
	// everything that it created using the driver's GPU and then
	// call the Close method. It may call Open again to reinitialize
	// the driver for further use.
	ErrFatal = errors.New("driver: fatal error")
)

// registry is the process-wide table of registered Drivers, keyed by
// name so Register's replace-on-collision behavior is a map write
// instead of a linear scan.
var registry = struct {
	mu sync.Mutex
	m  map[string]Driver
}{m: make(map[string]Driver)}

// Register registers drv under its Name. A driver implementation is
// expected to call Register exactly once, from an init function; a
// second registration under the same name replaces the first.
func Register(drv Driver) {
	name := drv.Name()
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.m[name]; exists {
		log.Printf("[!] driver '%s' replaced", name)
	} else {
		log.Printf("driver '%s' registered", name)
	}
	registry.m[name] = drv
}

// Drivers returns every registered Driver. Client code imports a
// driver package for its registration side effect, then selects
// among the result.
func Drivers() []Driver {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	drv := make([]Driver, 0, len(registry.m))
	for _, d := range registry.m {
		drv = append(drv, d)
	}
	return drv
}
