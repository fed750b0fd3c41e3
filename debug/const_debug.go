//go:build debug
// +build debug

package debug

// Debug is true when the debug build tag is provided.
const Debug = true
