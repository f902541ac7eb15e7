package upload

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSizeExceeded        = errors.New("upload: file exceeds size limit")
	ErrDisallowedExtension = errors.New("upload: file extension is not allowed")
	ErrInvalidFilename     = errors.New("upload: unsafe file name")
	ErrMissingFile         = errors.New("upload: no file in request")
	ErrNotMultipart        = errors.New("upload: request is not multipart/form-data")
)

type SizeError struct {
	Limit  int64
	Actual int64
}

// Actual is zero when the size is unknown because the body was cut off.
func (e *SizeError) Error() string {
	if e.Actual <= 0 {
		return fmt.Sprintf("upload exceeds the limit of %d bytes", e.Limit)
	}
	return fmt.Sprintf("file is %d bytes, limit is %d", e.Actual, e.Limit)
}

func (e *SizeError) Is(target error) bool { return target == ErrSizeExceeded }

type ExtensionError struct {
	Extension string
	Allowed   []string
}

func (e *ExtensionError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("file has no extension, allowed: %s", strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("extension %q is not allowed, allowed: %s", e.Extension, strings.Join(e.Allowed, ", "))
}

func (e *ExtensionError) Is(target error) bool { return target == ErrDisallowedExtension }

type FilenameError struct {
	Filename string
	Reason   string
}

func (e *FilenameError) Error() string {
	return fmt.Sprintf("file name %q: %s", e.Filename, e.Reason)
}

func (e *FilenameError) Is(target error) bool { return target == ErrInvalidFilename }
