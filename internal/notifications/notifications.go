package notifications

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"thumbnailer/internal/processor"
	"thumbnailer/internal/templates"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"
)

// maxSubjectLength is the SNS limit on message subjects, in characters
const maxSubjectLength = 100

// SNSNotification represents an abstraction for a notification to be published via AWS SNS.
type SNSNotification interface {
	Message() (string, error)
	Subject() string
	TopicArn() string
}

type SNSClientInterface interface {
	Publish(ctx context.Context, input *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type ThumbnailFailure struct {
	Object string
	Stage  string
	Error  string
}

type ThumbnailFailureNotification struct {
	Account  string
	Stack    string
	Date     string
	Total    int
	Failures []ThumbnailFailure
	Title    string
	Template *template.Template
	Topic    string
}

func (n ThumbnailFailureNotification) Message() (string, error) {
	var buf bytes.Buffer
	if err := n.Template.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n ThumbnailFailureNotification) Subject() string {
	return templates.Truncate(n.Title, maxSubjectLength)
}

func (n ThumbnailFailureNotification) TopicArn() string {
	return n.Topic
}

func SendNotification(ctx context.Context, client SNSClientInterface, notification SNSNotification) (string, error) {
	message, err := notification.Message()
	if err != nil {
		return "", err
	}

	result, err := client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(notification.TopicArn()),
		Subject:  aws.String(notification.Subject()),
		Message:  aws.String(message),
	})
	if err != nil {
		return "", err
	}

	return aws.ToString(result.MessageId), nil
}

// FailureNotifier publishes a summary of failed objects after each batch
type FailureNotifier struct {
	client   SNSClientInterface
	topic    string
	account  string
	stack    string
	template *template.Template
	logger   zerolog.Logger
	now      func() time.Time
}

func NewFailureNotifier(
	client SNSClientInterface,
	topic, account, stack string,
	tmpl *template.Template,
	logger zerolog.Logger,
) *FailureNotifier {
	return &FailureNotifier{
		client:   client,
		topic:    topic,
		account:  account,
		stack:    stack,
		template: tmpl,
		logger:   logger,
		now:      time.Now,
	}
}

// Report publishes nothing when the batch had no failures
func (f *FailureNotifier) Report(ctx context.Context, summary processor.Summary) error {
	if !summary.HasFailures() {
		return nil
	}

	failures := make([]ThumbnailFailure, 0, len(summary.Failures))
	for _, outcome := range summary.Failures {
		failures = append(failures, ThumbnailFailure{
			Object: outcome.Source.URI(),
			Stage:  string(outcome.Stage),
			Error:  fmt.Sprint(outcome.Err),
		})
	}

	notification := ThumbnailFailureNotification{
		Account:  f.account,
		Stack:    f.stack,
		Date:     f.now().UTC().String(),
		Total:    summary.Total,
		Failures: failures,
		Title:    fmt.Sprintf("Thumbnail Failure: %d of %d objects (%s)", summary.Failed, summary.Total, f.stack),
		Template: f.template,
		Topic:    f.topic,
	}

	messageId, err := SendNotification(ctx, f.client, notification)
	if err != nil {
		return err
	}

	f.logger.Info().Str("messageId", messageId).Int("failed", summary.Failed).Msg("Failure notification sent successfully")
	return nil
}
