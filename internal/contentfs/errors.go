package contentfs

import "errors"

var (
	// ErrResourceNotFound is returned when a path is absent from every layer.
	ErrResourceNotFound = errors.New("contentfs: resource not found")
	// ErrNoSystemPath is returned by ResolveToSystemPath when the serving
	// layer's backend cannot expose a filesystem path (e.g. in-memory).
	ErrNoSystemPath = errors.New("contentfs: layer has no system path")
)
