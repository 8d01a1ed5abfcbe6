package processor

import (
	"errors"
	"fmt"
)

var (
	ErrPanic = errors.New("panic while processing object")
)

func ErrorPanic(uri string, stage Stage, value any) error {
	return fmt.Errorf("%w: uri=%s stage=%s value=%v", ErrPanic, uri, stage, value)
}
