package transfer

import "gitlab.com/tozd/go/errors"

// Failure classes for a transfer run. Stages wrap these so callers can
// classify with errors.Is regardless of the underlying cause.
var (
	// ErrPathResolution: a source is missing or the destination root is
	// not a directory. Always fatal; no plan exists to execute.
	ErrPathResolution = errors.Base("path resolution failed")

	// ErrDirectoryCreate: a required destination directory could not be
	// created. Fatal for that subtree only; siblings are still attempted.
	ErrDirectoryCreate = errors.Base("directory creation failed")

	// ErrConversion: the external converter failed for one file.
	ErrConversion = errors.Base("audio conversion failed")

	// ErrCopy: one file could not be copied.
	ErrCopy = errors.Base("file copy failed")
)
