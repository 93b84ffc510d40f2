//go:build !nogpu

package wgpu

// Register the platform HAL backends with hal.RegisterBackend.
import _ "github.com/gogpu/wgpu/hal/allbackends"
