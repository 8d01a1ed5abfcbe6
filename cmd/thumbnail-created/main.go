package main

import (
	"context"
	_ "embed"
	"fmt"
	"text/template"
	"thumbnailer/internal/accounts"
	"thumbnailer/internal/config"
	"thumbnailer/internal/events"
	"thumbnailer/internal/files"
	"thumbnailer/internal/handler"
	"thumbnailer/internal/logging"
	"thumbnailer/internal/metrics"
	"thumbnailer/internal/notifications"
	"thumbnailer/internal/processor"
	"thumbnailer/internal/templates"
	"thumbnailer/internal/thumbs"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/joho/godotenv"
)

var (
	//go:embed templates/failure-notification.txt
	notificationTemplate string

	h *handler.Handler
)

func init() {
	// .env is only present for local runs
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Unable to load configuration: %v", err))
	}

	logger := logging.New(cfg.LogLevel)

	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 5)
		}),
	)
	if err != nil {
		panic(fmt.Sprintf("Unable to load AWS config: %v", err))
	}

	store := files.NewS3Store(s3.NewFromConfig(awsConfig))
	p := processor.NewProcessor(store, thumbs.NewTransformer(), processor.Settings{
		DestinationBucket: cfg.DestinationBucket,
		TempDir:           cfg.TempDir,
	}, logger)

	var reporters []handler.Reporter

	if cfg.MetricsEnabled() {
		reporters = append(reporters,
			metrics.NewPublisher(cloudwatch.NewFromConfig(awsConfig), cfg.MetricsNamespace, cfg.StackName, logger))
	}

	if cfg.NotificationsEnabled() {
		accountID, err := accounts.GetAccountID(context.Background(), sts.NewFromConfig(awsConfig))
		if err != nil {
			panic(fmt.Sprintf("Unable to get AWS account ID: %v", err))
		}

		notificationTmpl, err := template.New("notification").
			Funcs(templates.GetNotificationFuncMap()).
			Parse(notificationTemplate)
		if err != nil {
			panic(fmt.Sprintf("Failed to parse notification template: %v", err))
		}

		reporters = append(reporters, notifications.NewFailureNotifier(
			sns.NewFromConfig(awsConfig),
			cfg.FailureTopicArn,
			accountID,
			cfg.StackName,
			notificationTmpl,
			logger,
		))
	}

	h = handler.NewHandler(events.NewNormalizer(logger), p, logger, reporters...)

	logger.Info().
		Str("destinationBucket", cfg.DestinationBucket).
		Str("tempDir", cfg.TempDir).
		Bool("metrics", cfg.MetricsEnabled()).
		Bool("notifications", cfg.NotificationsEnabled()).
		Msg("Thumbnail handler initialized")
}

func main() {
	lambda.Start(h.Handle)
}
