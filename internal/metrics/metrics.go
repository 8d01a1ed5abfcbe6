package metrics

import (
	"context"
	"fmt"
	"thumbnailer/internal/processor"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog"
)

const (
	MetricCreated = "ThumbnailsCreated"
	MetricSkipped = "ThumbnailsSkipped"
	MetricFailed  = "ThumbnailsFailed"

	stackDimension = "Stack"
)

type CloudWatchClientInterface interface {
	PutMetricData(ctx context.Context, input *cloudwatch.PutMetricDataInput, opts ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Publisher pushes per-invocation thumbnail counters to CloudWatch
type Publisher struct {
	client    CloudWatchClientInterface
	namespace string
	stack     string
	logger    zerolog.Logger
}

func NewPublisher(client CloudWatchClientInterface, namespace, stack string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		client:    client,
		namespace: namespace,
		stack:     stack,
		logger:    logger,
	}
}

func (p *Publisher) Report(ctx context.Context, summary processor.Summary) error {
	if summary.Total == 0 {
		return nil
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []cwTypes.MetricDatum{
			p.datum(MetricCreated, summary.Succeeded),
			p.datum(MetricSkipped, summary.Skipped),
			p.datum(MetricFailed, summary.Failed),
		},
	}

	if _, err := p.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("failed to publish metrics to %s: %w", p.namespace, err)
	}

	p.logger.Debug().Str("namespace", p.namespace).Int("total", summary.Total).Msg("Published thumbnail metrics")
	return nil
}

func (p *Publisher) datum(name string, value int) cwTypes.MetricDatum {
	datum := cwTypes.MetricDatum{
		MetricName: aws.String(name),
		Unit:       cwTypes.StandardUnitCount,
		Value:      aws.Float64(float64(value)),
	}

	if p.stack != "" {
		datum.Dimensions = []cwTypes.Dimension{
			{
				Name:  aws.String(stackDimension),
				Value: aws.String(p.stack),
			},
		}
	}
	return datum
}
