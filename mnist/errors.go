package mnist

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDatasetUnavailable is returned by Fetch and Load when any of resources could not be cached
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	ErrRetrieval     = errors.New("retrieval failure")
	ErrFilesystem    = errors.New("filesystem failure")
	ErrDecompression = errors.New("decompression failure")
	ErrFormat        = errors.New("format failure")
)

// ResourceError Failure tied to a single resource.
// errors.Is matches Kind (one of ErrRetrieval, ErrFilesystem, ErrDecompression, ErrFormat),
// errors.Unwrap returns the underlying cause.
type ResourceError struct {
	Resource Resource
	Kind     error
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Resource, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Resource, e.Kind, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

func (e *ResourceError) Is(target error) bool {
	return target == e.Kind
}

func resourceErr(r Resource, kind, err error) error {
	return &ResourceError{Resource: r, Kind: kind, Err: err}
}
