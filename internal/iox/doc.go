// SPDX-License-Identifier: EPL-2.0

// Package iox holds the small io adapters shared by the back-ends and the
// decode pipeline: an in-memory seekable buffer for libraries that need
// io.ReadSeeker or io.WriteSeeker, and a reader that tracks how far a
// stream got and why it stopped.
package iox
