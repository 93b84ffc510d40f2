// Package filter implements the per-pixel bloom kernels for the software device.
//
// The kernels mirror the WGSL used by the GPU device:
//   - Prefilter: soft-knee brightness threshold with an upper clamp
//   - Downsample: 4-tap box, or 9-tap tent in high quality mode
//   - Upsample: bilinear (or tent) fetch of the coarser level blended with
//     the finer one by scatter
//   - Composite: additive blend of the bloom layer onto the frame
//
// All kernels read linear float RGBA through image.Buf and write one
// destination pixel per invocation. Rows are distributed over a
// parallel.WorkerPool when one is supplied; a nil pool runs serially.
package filter
