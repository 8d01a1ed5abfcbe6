package events

import "strings"

// Shape identifies which envelope a batch arrived in
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeS3
	ShapeSQS
)

func (s Shape) String() string {
	switch s {
	case ShapeS3:
		return "s3"
	case ShapeSQS:
		return "sqs"
	default:
		return "unknown"
	}
}

// Notification is a single object change extracted from a batch.
// Key is still percent-encoded as delivered by S3.
type Notification struct {
	Bucket    string
	Key       string
	EventName string
}

// BucketName extracts the bucket name
func (n Notification) BucketName() string {
	return n.Bucket
}

// ObjectKey extracts the raw object key
func (n Notification) ObjectKey() string {
	return n.Key
}

// IsObjectCreated checks if the notification is an object creation event
func (n Notification) IsObjectCreated() bool {
	return strings.HasPrefix(n.EventName, "ObjectCreated:")
}

// IsObjectRemoved checks if the notification is an object deletion event
func (n Notification) IsObjectRemoved() bool {
	return strings.HasPrefix(n.EventName, "ObjectRemoved:")
}
