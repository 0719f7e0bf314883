// Package gpu is the Vulkan backend. It owns the window, the device, the
// swapchain and the frame loop, and implements the buffer queue, pipeline and
// recorder contracts of the model package on top of SDL and the goki Vulkan
// bindings.
package gpu

import (
	"unsafe"
)

// allOfAinB reports whether every string of a appears in b. Used for extension
// and layer support checks during initialization.
func allOfAinB(a []string, b []string) bool {
	for _, _a := range a {
		isIn := false
		for _, _b := range b {
			if _a == _b {
				isIn = true
				break
			}
		}
		if !isIn {
			return false
		}
	}
	return true
}

// terminatedStr ensures the given string is \x00 terminated as vulkan expects
// this in certain structs.
func terminatedStr(s string) string {
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func terminatedStrs(strs []string) []string {
	out := make([]string, len(strs))
	for i := range strs {
		out[i] = terminatedStr(strs[i])
	}
	return out
}

// asUint32Slice reinterprets SPIR-V bytes as the []uint32 shader module
// creation expects. Equivalent to C++ 'reinterpret_cast<const uint32_t*>'.
func asUint32Slice(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
