// Package parallel runs the software bloom kernels across goroutines.
//
// Every kernel in the bloom chain writes each destination pixel from a
// read-only source, so a frame splits cleanly into horizontal bands. The
// WorkerPool keeps its goroutines alive between passes; a frame issues a
// dozen or more small passes and spawning per pass would dominate the cost
// at low pyramid levels.
package parallel
