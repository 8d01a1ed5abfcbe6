package events

import (
	"encoding/json"

	awsevents "github.com/aws/aws-lambda-go/events"
)

// S3EventRecord is one storage-event entry. S3 is nil when the entry
// carries no storage descriptor.
type S3EventRecord struct {
	EventSource string              `json:"eventSource"`
	EventName   string              `json:"eventName"`
	S3          *awsevents.S3Entity `json:"s3"`
}

// S3Batch is a storage-event batch whose entries are decoded lazily
type S3Batch struct {
	Records []json.RawMessage `json:"Records"`
}

func (r *S3EventRecord) HasStorageDescriptor() bool {
	return r.S3 != nil
}

func (r *S3EventRecord) Notification() Notification {
	return Notification{
		Bucket:    r.S3.Bucket.Name,
		Key:       r.S3.Object.Key,
		EventName: r.EventName,
	}
}
