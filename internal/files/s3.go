package files

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3ClientInterface defines the S3 operations required to stage objects locally
type S3ClientInterface interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store is an ObjectStore backed by S3
type S3Store struct {
	s3Client S3ClientInterface
}

func NewS3Store(s3Client S3ClientInterface) *S3Store {
	return &S3Store{s3Client: s3Client}
}

// Download streams an object into a new file at localPath
func (s *S3Store) Download(ctx context.Context, obj S3Object, localPath string) error {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return ErrorObjectNotFound(obj.URI())
		}
		return ErrorDownloadFailed(obj.URI(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	f, err := os.Create(localPath)
	if err != nil {
		return ErrorDownloadFailed(obj.URI(), err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return ErrorDownloadFailed(obj.URI(), err)
	}

	if err := f.Close(); err != nil {
		return ErrorDownloadFailed(obj.URI(), err)
	}
	return nil
}

// Upload puts the file at localPath to obj, sniffing its content type
func (s *S3Store) Upload(ctx context.Context, localPath string, obj S3Object) error {
	f, err := os.Open(localPath)
	if err != nil {
		return ErrorUploadFailed(obj.URI(), err)
	}
	defer func() { _ = f.Close() }()

	contentType, err := sniffContentType(f)
	if err != nil {
		return ErrorUploadFailed(obj.URI(), err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(obj.Bucket),
		Key:         aws.String(obj.Key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return ErrorUploadFailed(obj.URI(), err)
	}
	return nil
}

func sniffContentType(f *os.File) (string, error) {
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

// isS3NotFound checks if an error is a "not found" error from S3
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NoSuchBucket"
	}
	return false
}
