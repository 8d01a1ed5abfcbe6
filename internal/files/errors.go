package files

import (
	"errors"
	"fmt"
)

var (
	ErrDownloadFailed = errors.New("failed to download object")
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("failed to upload object")
)

func ErrorDownloadFailed(uri string, cause error) error {
	return fmt.Errorf("%w: uri=%s cause=%v", ErrDownloadFailed, uri, cause)
}

// ErrorObjectNotFound matches both ErrDownloadFailed and ErrObjectNotFound.
func ErrorObjectNotFound(uri string) error {
	return fmt.Errorf("%w: %w: uri=%s", ErrDownloadFailed, ErrObjectNotFound, uri)
}

func ErrorUploadFailed(uri string, cause error) error {
	return fmt.Errorf("%w: uri=%s cause=%v", ErrUploadFailed, uri, cause)
}
