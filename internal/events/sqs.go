package events

import (
	"encoding/json"
	"errors"

	awsevents "github.com/aws/aws-lambda-go/events"
)

const (
	SQSEventSource = "aws:sqs"

	snsMessageField = "Message"
	recordsField    = "Records"
)

var (
	errNotObject      = errors.New("document is not a JSON object")
	errNullMessage    = errors.New("null Message value")
	errRecordsNotList = errors.New("Records is not a list")
)

// recordProbe is just enough of a record to classify its batch
type recordProbe struct {
	EventSource string          `json:"eventSource"`
	S3          json.RawMessage `json:"s3"`
}

func (p recordProbe) shape() Shape {
	switch {
	case p.EventSource == SQSEventSource:
		return ShapeSQS
	case len(p.S3) > 0 && string(p.S3) != "null":
		return ShapeS3
	default:
		return ShapeUnknown
	}
}

// unwrapRelayBody decodes the storage-event batch carried by an SQS message.
// A body holding a Message key is an SNS envelope and its value is decoded
// again. Keys match exactly; encoding/json struct matching would also accept
// "message" or "records".
func unwrapRelayBody(msg awsevents.SQSMessage) (S3Batch, bool, error) {
	body, err := decodeObject(msg.Body)
	if err != nil {
		return S3Batch{}, false, ErrorMalformedEvent(msg.MessageId, "body", err)
	}

	raw, wrapped := body[snsMessageField]
	if !wrapped {
		batch, err := batchFromObject(body)
		if err != nil {
			return S3Batch{}, false, ErrorMalformedEvent(msg.MessageId, "body", err)
		}
		return batch, false, nil
	}

	var message *string
	if err := json.Unmarshal(raw, &message); err != nil {
		return S3Batch{}, true, ErrorMalformedEvent(msg.MessageId, snsMessageField, err)
	}
	if message == nil {
		return S3Batch{}, true, ErrorMalformedEvent(msg.MessageId, snsMessageField, errNullMessage)
	}

	doc, err := decodeObject(*message)
	if err != nil {
		return S3Batch{}, true, ErrorMalformedEvent(msg.MessageId, snsMessageField, err)
	}

	batch, err := batchFromObject(doc)
	if err != nil {
		return S3Batch{}, true, ErrorMalformedEvent(msg.MessageId, snsMessageField, err)
	}
	return batch, true, nil
}

func decodeObject(doc string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// batchFromObject treats a missing Records key as an empty batch
func batchFromObject(obj map[string]json.RawMessage) (S3Batch, error) {
	raw, ok := obj[recordsField]
	if !ok {
		return S3Batch{}, nil
	}

	var batch S3Batch
	if string(raw) == "null" {
		return S3Batch{}, errRecordsNotList
	}
	if err := json.Unmarshal(raw, &batch.Records); err != nil {
		return S3Batch{}, errRecordsNotList
	}
	return batch, nil
}
