package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"thumbnailer/internal/events"
	"thumbnailer/internal/processor"

	"github.com/rs/zerolog"
)

const (
	BodySuccess      = "Thumbnail creation completed successfully"
	BodyInvalidEvent = "Invalid event structure"
	bodyErrorPrefix  = "Error creating thumbnail: "
)

// Response is the status pair returned to the invoker
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Reporter receives the summary of every processed batch
type Reporter interface {
	Report(ctx context.Context, summary processor.Summary) error
}

type Normalizer interface {
	Normalize(payload []byte) (events.Batch, error)
}

type ObjectProcessor interface {
	Process(ctx context.Context, n events.Notification) processor.Outcome
}

type Handler struct {
	normalizer Normalizer
	processor  ObjectProcessor
	reporters  []Reporter
	logger     zerolog.Logger
}

func NewHandler(normalizer Normalizer, objectProcessor ObjectProcessor, logger zerolog.Logger, reporters ...Reporter) *Handler {
	return &Handler{
		normalizer: normalizer,
		processor:  objectProcessor,
		reporters:  reporters,
		logger:     logger,
	}
}

// Handle processes every object in the payload in order. Per-object failures
// never change the status; the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, payload json.RawMessage) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Msg("Recovered from panic while handling event")
			resp = errorResponse(fmt.Errorf("unexpected panic: %v", r))
			err = nil
		}
	}()

	batch, err := h.normalizer.Normalize(payload)
	if err != nil {
		if errors.Is(err, events.ErrNoRecords) {
			h.logger.Error().Err(err).Msg("Invalid event structure")
			return Response{StatusCode: http.StatusBadRequest, Body: BodyInvalidEvent}, nil
		}
		h.logger.Error().Err(err).Msg("Failed to parse event")
		return errorResponse(err), nil
	}

	h.logger.Info().
		Str("shape", batch.Shape.String()).
		Int("objects", len(batch.Notifications)).
		Msg("Processing thumbnail event")

	var summary processor.Summary
	for _, n := range batch.Notifications {
		summary.Add(h.processor.Process(ctx, n))
	}

	h.logger.Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Finished processing thumbnail event")

	h.report(ctx, summary)

	return Response{StatusCode: http.StatusOK, Body: BodySuccess}, nil
}

func (h *Handler) report(ctx context.Context, summary processor.Summary) {
	for _, reporter := range h.reporters {
		if err := reporter.Report(ctx, summary); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to report batch summary")
		}
	}
}

func errorResponse(err error) Response {
	return Response{StatusCode: http.StatusInternalServerError, Body: bodyErrorPrefix + err.Error()}
}
