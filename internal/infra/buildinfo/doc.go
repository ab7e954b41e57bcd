// Package buildinfo reports the version of the running tinykv binary.
//
// Version comes from ldflags. Commit and build time come from ldflags when
// set and otherwise from the VCS metadata stamped by the Go toolchain.
package buildinfo
