// Package software is a CPU bloom device.
//
// Textures are image buffers stored in the exact GPU format the pass
// selects, so a packed RG11B10 pyramid loses the same precision it would on
// hardware. Blits run the kernels from internal/filter across a shared
// worker pool; each blit finishes before the call returns, which makes
// recording and execution the same step.
//
// Importing the package registers the device as "software" with the
// backend registry.
package software
