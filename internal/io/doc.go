// Package ioutils provides file system helpers shared by the store and
// download layers.
//
// This package contains functions for:
//   - Filename sanitization
//   - Deriving local filenames from image URLs
//   - Directory creation
package ioutils
