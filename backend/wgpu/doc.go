// Package wgpu runs the bloom pyramid on the GPU through the gogpu/wgpu HAL.
//
// Every bloom blit is one render pass drawing a fullscreen triangle into the
// destination level. The passes share one WGSL module, compiled to SPIR-V
// with naga when the device is created:
//
//	fs_prefilter   source    -> down[0]   soft-knee threshold
//	fs_downsample  down[i-1] -> down[i]   box or tent filter
//	fs_copy        down[n-1] -> up[n-1]
//	fs_upsample    up[i+1], down[i] -> up[i]
//	fs_composite   up[0]     -> frame     additive blend
//
// Commands are recorded into one command encoder and submitted by Flush,
// which Download calls implicitly.
//
// # Devices
//
// Open creates a standalone device on the best hardware adapter, preferring
// discrete and integrated GPUs. FromProvider shares a device owned by a host
// application that exposes its HAL device and queue through
// gpucontext.DeviceProvider. Importing this package registers the "wgpu"
// device with the backend registry.
//
// Build with the nogpu tag to leave the package empty.
package wgpu
