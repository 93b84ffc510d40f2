// Package backend provides a registry of bloom devices.
//
// A device executes the blits a bloom.Pass records. Device packages register
// a factory from init(), so importing them for side effects makes them
// available by name:
//
//	import (
//	    _ "github.com/gogpu/bloom/backend/software"
//	    _ "github.com/gogpu/bloom/backend/wgpu"
//	)
//
// # Device Selection
//
// Use Default to get the best available device, or Open to request one by
// name:
//
//	dev, err := backend.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	pass, err := bloom.NewPass(dev, dev)
//
// # Available Devices
//
//   - "wgpu": GPU render passes via gogpu/wgpu (preferred on hardware adapters)
//   - "software": CPU kernels, always available
package backend
