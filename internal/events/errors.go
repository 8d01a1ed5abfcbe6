package events

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEvent         = errors.New("malformed event")
	ErrNoRecords              = errors.New("event has no usable Records")
	ErrUnrecognizedEventShape = errors.New("unrecognized event shape")
)

func ErrorMalformedEvent(messageId, field string, cause error) error {
	return fmt.Errorf("%w: messageId=%s field=%s cause=%v", ErrMalformedEvent, messageId, field, cause)
}

func ErrorNoRecords(reason string) error {
	return fmt.Errorf("%w: %s", ErrNoRecords, reason)
}

func ErrorUnrecognizedEventShape(record string) error {
	return fmt.Errorf("%w: record=%s", ErrUnrecognizedEventShape, record)
}
