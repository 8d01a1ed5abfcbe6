package thumbs

import (
	"errors"
	"fmt"
)

var (
	ErrTransform         = errors.New("failed to create thumbnail")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageTooLarge     = errors.New("image exceeds pixel limit")
)

func ErrorTransform(step, path string, cause error) error {
	return fmt.Errorf("%w: step=%s path=%s cause=%v", ErrTransform, step, path, cause)
}

func ErrorUnsupportedFormat(path, format string) error {
	return fmt.Errorf("%w: %w: path=%s format=%s", ErrTransform, ErrUnsupportedFormat, path, format)
}

func ErrorImageTooLarge(path string, width, height, limit int) error {
	return fmt.Errorf("%w: step=decode path=%s cause=%w: %dx%d exceeds %d pixels",
		ErrTransform, path, ErrImageTooLarge, width, height, limit)
}
