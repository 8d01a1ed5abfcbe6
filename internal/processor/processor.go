package processor

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"thumbnailer/internal/events"
	"thumbnailer/internal/files"
	"thumbnailer/internal/thumbs"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// ThumbnailPrefix names thumbnails and marks keys that must not be processed again
	ThumbnailPrefix = "resized-"

	DestinationBucketSuffix = "-resized"

	maxStagedExtLen = 16
)

// Transformer writes a thumbnail of srcPath to dstPath
type Transformer interface {
	Transform(srcPath, dstPath string) (thumbs.Result, error)
}

type Settings struct {
	// DestinationBucket overrides the default "<source>-resized" bucket
	DestinationBucket string
	TempDir           string
}

// Processor runs the download, transform, upload and cleanup steps for a
// single notification.
type Processor struct {
	store       files.ObjectStore
	transformer Transformer
	settings    Settings
	logger      zerolog.Logger
	newID       func() string
}

func NewProcessor(store files.ObjectStore, transformer Transformer, settings Settings, logger zerolog.Logger) *Processor {
	if settings.TempDir == "" {
		settings.TempDir = os.TempDir()
	}
	return &Processor{
		store:       store,
		transformer: transformer,
		settings:    settings,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// IsThumbnailKey reports whether key already carries the thumbnail marker
func IsThumbnailKey(key string) bool {
	return strings.Contains(key, ThumbnailPrefix)
}

// DestinationBucket returns the bucket thumbnails of sourceBucket are written to
func (p *Processor) DestinationBucket(sourceBucket string) string {
	if p.settings.DestinationBucket != "" {
		return p.settings.DestinationBucket
	}
	return sourceBucket + DestinationBucketSuffix
}

// Thumbnail returns where the thumbnail of source is uploaded
func (p *Processor) Thumbnail(source files.S3Object) files.S3Object {
	return files.NewS3Object(p.DestinationBucket(source.Bucket), ThumbnailPrefix+source.Key)
}

// Process never returns an error: every failure is reported on the Outcome.
func (p *Processor) Process(ctx context.Context, n events.Notification) (outcome Outcome) {
	source := files.NewS3Object(n.BucketName(), DecodeKey(n.ObjectKey()))
	logger := p.logger.With().Str("bucket", source.Bucket).Str("key", source.Key).Logger()

	if IsThumbnailKey(source.Key) {
		logger.Info().Msg("Skipping already processed file")
		return skipped(source, "thumbnail marker present")
	}

	if n.IsObjectRemoved() {
		logger.Info().Str("eventName", n.EventName).Msg("Skipping removal event")
		return skipped(source, "object removed")
	}

	stage := StageDownload
	defer func() {
		if r := recover(); r != nil {
			err := ErrorPanic(source.URI(), stage, r)
			logger.Error().Err(err).Str("stage", string(stage)).Msg("Recovered from panic while processing object")
			outcome = failed(source, stage, err)
		}
	}()

	downloadPath, uploadPath := p.stagingPaths(source.Key)
	defer p.cleanup(logger, downloadPath, uploadPath)

	logger.Info().Msg("Downloading object")
	if err := p.store.Download(ctx, source, downloadPath); err != nil {
		logger.Error().Err(err).Msg("Failed to download object")
		return failed(source, StageDownload, err)
	}

	stage = StageTransform
	result, err := p.transformer.Transform(downloadPath, uploadPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resize image")
		return failed(source, StageTransform, err)
	}

	stage = StageUpload
	thumbnail := p.Thumbnail(source)
	logger.Info().
		Str("destBucket", thumbnail.Bucket).
		Str("destKey", thumbnail.Key).
		Int("width", result.Width).
		Int("height", result.Height).
		Msg("Uploading resized image")

	if err := p.store.Upload(ctx, uploadPath, thumbnail); err != nil {
		logger.Error().Err(err).Str("destBucket", thumbnail.Bucket).Str("destKey", thumbnail.Key).Msg("Failed to upload thumbnail")
		return failed(source, StageUpload, err)
	}

	logger.Info().Msg("Successfully processed object")
	return succeeded(source, thumbnail)
}

// DecodeKey reverses the form encoding S3 applies to keys in notifications:
// '+' is a space and %XX is a byte. Malformed escapes are kept as written.
func DecodeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))

	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(key):
			v, err := strconv.ParseUint(key[i+1:i+3], 16, 8)
			if err != nil {
				b.WriteByte(c)
				continue
			}
			b.WriteByte(byte(v))
			i += 2
		default:
			b.WriteByte(c)
		}
	}

	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

// stagingPaths allocates collision-free local paths for the source and thumbnail
func (p *Processor) stagingPaths(key string) (string, string) {
	id := p.newID()
	ext := strings.ToLower(path.Ext(key))
	if len(ext) > maxStagedExtLen {
		ext = ""
	}
	return filepath.Join(p.settings.TempDir, id+"-source"+ext),
		filepath.Join(p.settings.TempDir, id+"-resized"+ext)
}

func (p *Processor) cleanup(logger zerolog.Logger, paths ...string) {
	for _, stagedPath := range paths {
		if err := os.Remove(stagedPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("path", stagedPath).Msg("Failed to remove temporary file")
		}
	}
}
