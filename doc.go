// Package bloom implements a mip-pyramid bloom post-process.
//
// # Overview
//
// Bloom extracts the bright parts of a rendered frame, blurs them across a
// pyramid of progressively half-resolution textures and adds the result back
// onto the frame. The package owns the pyramid: it decides how many levels a
// frame needs, keeps their textures allocated across frames and records the
// blits that fill them. The blits themselves run on a Device supplied by the
// host.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/bloom"
//	    "github.com/gogpu/bloom/backend/software"
//	)
//
//	dev := software.NewDevice()
//	defer dev.Close()
//
//	pass, err := bloom.NewPass(dev, dev)
//	if err != nil {
//	    return err
//	}
//	defer pass.Close()
//
//	layer, err := pass.Render(frame, bloom.DefaultParams())
//	if errors.Is(err, bloom.ErrSkipped) {
//	    // present the frame without bloom
//	}
//	err = pass.Composite(frame, layer, bloom.DefaultParams())
//
// # Architecture
//
// A frame goes through four steps:
//   - Plan derives the level count and sizes from the source size
//   - Pyramid.Reconcile reallocates only the levels whose size or format changed
//   - Pass.Run records the prefilter, downsample and upsample blits
//   - Pass.Composite adds up[0] onto the frame
//
// The HDR format is chosen once per Pass by SelectFormat.
//
// # Devices
//
// Two devices ship with the module:
//   - backend/software runs every blit on the CPU in float32
//   - backend/wgpu records render passes through the gogpu/wgpu HAL
//
// # Logging
//
// bloom is silent by default. Use SetLogger to route its diagnostics to a
// [log/slog.Logger].
package bloom
