package events

import (
	"encoding/json"
	"errors"
	"fmt"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
)

const maxRecordPreview = 256

// Batch is the flattened content of one invocation payload
type Batch struct {
	Shape         Shape
	Notifications []Notification
}

// Normalizer flattens direct S3 batches, SQS-relayed batches and
// SQS-relayed SNS notifications into a single list of Notifications.
type Normalizer struct {
	logger zerolog.Logger
}

func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize classifies the payload by its first record and extracts every
// storage notification in batch order. Any record that cannot be decoded
// fails the whole batch.
func (n *Normalizer) Normalize(payload []byte) (Batch, error) {
	records, err := parseRecords(payload)
	if err != nil {
		return Batch{}, err
	}

	shape, err := classify(records[0])
	if err != nil {
		return Batch{}, err
	}

	var notifications []Notification
	switch shape {
	case ShapeSQS:
		notifications, err = n.fromRelayRecords(records)
	case ShapeS3:
		notifications, err = n.fromS3Records(records, "")
	}
	if err != nil {
		return Batch{Shape: shape}, err
	}

	return Batch{Shape: shape, Notifications: notifications}, nil
}

func parseRecords(payload []byte) ([]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrorNoRecords("payload is not an object")
		}
		return nil, ErrorMalformedEvent("", "payload", err)
	}

	raw, ok := top["Records"]
	if !ok {
		return nil, ErrorNoRecords("missing Records")
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, ErrorNoRecords("Records is not a list")
	}

	if len(records) == 0 {
		return nil, ErrorNoRecords("Records is empty")
	}
	return records, nil
}

func classify(record json.RawMessage) (Shape, error) {
	var probe recordProbe
	if err := json.Unmarshal(record, &probe); err != nil {
		return ShapeUnknown, ErrorUnrecognizedEventShape(preview(record))
	}

	shape := probe.shape()
	if shape == ShapeUnknown {
		return ShapeUnknown, ErrorUnrecognizedEventShape(preview(record))
	}
	return shape, nil
}

func (n *Normalizer) fromRelayRecords(records []json.RawMessage) ([]Notification, error) {
	var notifications []Notification

	for i, raw := range records {
		var msg awsevents.SQSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, ErrorMalformedEvent("", fmt.Sprintf("Records[%d]", i), err)
		}

		batch, wrapped, err := unwrapRelayBody(msg)
		if err != nil {
			return nil, err
		}

		if len(batch.Records) == 0 {
			n.logger.Warn().
				Str("messageId", msg.MessageId).
				Bool("sns", wrapped).
				Msg("Relayed message carries no storage records, ignoring")
			continue
		}

		extracted, err := n.fromS3Records(batch.Records, msg.MessageId)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, extracted...)
	}

	return notifications, nil
}

func (n *Normalizer) fromS3Records(records []json.RawMessage, messageId string) ([]Notification, error) {
	notifications := make([]Notification, 0, len(records))

	for i, raw := range records {
		var record S3EventRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, ErrorMalformedEvent(messageId, fmt.Sprintf("Records[%d]", i), err)
		}

		if !record.HasStorageDescriptor() {
			n.logger.Warn().
				Str("messageId", messageId).
				Int("index", i).
				Str("eventSource", record.EventSource).
				Msg("Record has no s3 descriptor, skipping")
			continue
		}

		notifications = append(notifications, record.Notification())
	}

	return notifications, nil
}

func preview(record json.RawMessage) string {
	if len(record) > maxRecordPreview {
		return string(record[:maxRecordPreview]) + "..."
	}
	return string(record)
}
