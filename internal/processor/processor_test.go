package processor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"testing"
	"thumbnailer/internal/events"
	"thumbnailer/internal/files"
	"thumbnailer/internal/thumbs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ObjectStore that records every call
type memStore struct {
	objects   map[string][]byte // key format: "bucket/key"
	errors    map[string]error  // key format: "operation:bucket/key"
	downloads []string
	uploads   []string
}

func newMemStore() *memStore {
	return &memStore{
		objects: make(map[string][]byte),
		errors:  make(map[string]error),
	}
}

func (m *memStore) calls() int {
	return len(m.downloads) + len(m.uploads)
}

func (m *memStore) Download(ctx context.Context, obj files.S3Object, localPath string) error {
	key := obj.Bucket + "/" + obj.Key
	m.downloads = append(m.downloads, key)

	if err, exists := m.errors["download:"+key]; exists {
		return err
	}

	content, exists := m.objects[key]
	if !exists {
		return files.ErrorObjectNotFound(obj.URI())
	}
	return os.WriteFile(localPath, content, 0o600)
}

func (m *memStore) Upload(ctx context.Context, localPath string, obj files.S3Object) error {
	key := obj.Bucket + "/" + obj.Key
	m.uploads = append(m.uploads, key)

	if err, exists := m.errors["upload:"+key]; exists {
		return err
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	m.objects[key] = content
	return nil
}

type panickyTransformer struct{}

func (panickyTransformer) Transform(srcPath, dstPath string) (thumbs.Result, error) {
	if err := os.WriteFile(dstPath, []byte("partial"), 0o600); err != nil {
		return thumbs.Result{}, err
	}
	panic("decoder exploded")
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 120, B: 240, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newTestProcessor(t *testing.T, store files.ObjectStore, transformer Transformer, destination string) (*Processor, string) {
	t.Helper()
	tempDir := t.TempDir()
	return NewProcessor(store, transformer, Settings{DestinationBucket: destination, TempDir: tempDir}, zerolog.Nop()), tempDir
}

func assertNoStagedFiles(t *testing.T, tempDir string) {
	t.Helper()
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files should be removed")
}

func TestProcessCreatesThumbnail(t *testing.T) {
	store := newMemStore()
	store.objects["b/pic.jpg"] = jpegBytes(t, 400, 200)

	p, tempDir := newTestProcessor(t, store, thumbs.NewTransformer(), "")
	outcome := p.Process(context.Background(), events.Notification{Bucket: "b", Key: "pic.jpg", EventName: "ObjectCreated:Put"})

	require.True(t, outcome.Succeeded(), "unexpected outcome: %+v", outcome)
	assert.Equal(t, StageDone, outcome.Stage)
	assert.Equal(t, files.NewS3Object("b", "pic.jpg"), outcome.Source)
	assert.Equal(t, files.NewS3Object("b-resized", "resized-pic.jpg"), outcome.Thumbnail)
	assert.Equal(t, []string{"b/pic.jpg"}, store.downloads)
	assert.Equal(t, []string{"b-resized/resized-pic.jpg"}, store.uploads)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(store.objects["b-resized/resized-pic.jpg"]))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 128, cfg.Width)
	assert.Equal(t, 64, cfg.Height)

	assertNoStagedFiles(t, tempDir)
}

func TestProcessSkipsThumbnails(t *testing.T) {
	keys := []string{
		"resized-pic.jpg",
		"folder/resized-pic.jpg",
		"nested%2Fresized-pic.jpg",
		"archive-resized-2024/pic.jpg",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			store := newMemStore()
			p, tempDir := newTestProcessor(t, store, thumbs.NewTransformer(), "")

			outcome := p.Process(context.Background(), events.Notification{Bucket: "b", Key: key})

			assert.True(t, outcome.Skipped())
			assert.Equal(t, StageFilter, outcome.Stage)
			assert.Zero(t, store.calls(), "skipped objects must not touch the store")
			assertNoStagedFiles(t, tempDir)
		})
	}
}

func TestProcessSkipsRemovalEvents(t *testing.T) {
	store := newMemStore()
	p, _ := newTestProcessor(t, store, thumbs.NewTransformer(), "")

	outcome := p.Process(context.Background(), events.Notification{Bucket: "b", Key: "pic.jpg", EventName: "ObjectRemoved:Delete"})

	assert.True(t, outcome.Skipped())
	assert.Zero(t, store.calls())
}

func TestProcessDecodesKey(t *testing.T) {
	store := newMemStore()
	store.objects["b/my photo (1).jpg"] = jpegBytes(t, 300, 300)

	p, _ := newTestProcessor(t, store, thumbs.NewTransformer(), "")
	outcome := p.Process(context.Background(), events.Notification{Bucket: "b", Key: "my+photo+%281%29.jpg"})

	require.True(t, outcome.Succeeded(), "unexpected outcome: %+v", outcome)
	assert.Equal(t, "my photo (1).jpg", outcome.Source.Key)
	assert.Equal(t, []string{"b-resized/resized-my photo (1).jpg"}, store.uploads)
}

func TestProcessKeepsMalformedEscapes(t *testing.T) {
	store := newMemStore()
	store.objects["b/bad%zzkey.jpg"] = jpegBytes(t, 64, 64)
	p, _ := newTestProcessor(t, store, thumbs.NewTransformer(), "")

	outcome := p.Process(context.Background(), events.Notification{Bucket: "b", Key: "bad%zzkey.jpg"})

	require.True(t, outcome.Succeeded(), "unexpected outcome: %+v", outcome)
	assert.Equal(t, "bad%zzkey.jpg", outcome.Source.Key)
	assert.Equal(t, []string{"b-resized/resized-bad%zzkey.jpg"}, store.uploads)
}

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain.jpg", want: "plain.jpg"},
		{in: "my+photo.jpg", want: "my photo.jpg"},
		{in: "folder%2Fpic%20one.jpg", want: "folder/pic one.jpg"},
		{in: "caf%C3%A9.png", want: "café.png"},
		{in: "100%25.jpg", want: "100%.jpg"},
		{in: "bad%zzkey.jpg", want: "bad%zzkey.jpg"},
		{in: "trailing%", want: "trailing%"},
		{in: "trailing%4", want: "trailing%4"},
		{in: "%2b%2B", want: "++"},
		{in: "broken%C3.jpg", want: "broken\uFFFD.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeKey(tt.in))
		})
	}
}

func TestProcessFailures(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, store *memStore)
		transformer Transformer
		stage       Stage
		wantErr     error
		uploads     int
	}{
		{
			name:        "object missing",
			setup:       func(t *testing.T, store *memStore) {},
			transformer: thumbs.NewTransformer(),
			stage:       StageDownload,
			wantErr:     files.ErrObjectNotFound,
			uploads:     0,
		},
		{
			name: "download denied",
			setup: func(t *testing.T, store *memStore) {
				store.objects["b/pic.jpg"] = jpegBytes(t, 200, 200)
				store.errors["download:b/pic.jpg"] = files.ErrorDownloadFailed("s3://b/pic.jpg", errors.New("AccessDenied"))
			},
			transformer: thumbs.NewTransformer(),
			stage:       StageDownload,
			wantErr:     files.ErrDownloadFailed,
			uploads:     0,
		},
		{
			name: "not an image",
			setup: func(t *testing.T, store *memStore) {
				store.objects["b/pic.jpg"] = []byte("plain text pretending to be a jpeg")
			},
			transformer: thumbs.NewTransformer(),
			stage:       StageTransform,
			wantErr:     thumbs.ErrTransform,
			uploads:     0,
		},
		{
			name: "upload denied",
			setup: func(t *testing.T, store *memStore) {
				store.objects["b/pic.jpg"] = jpegBytes(t, 200, 200)
				store.errors["upload:b-resized/resized-pic.jpg"] = files.ErrorUploadFailed("s3://b-resized/resized-pic.jpg", errors.New("AccessDenied"))
			},
			transformer: thumbs.NewTransformer(),
			stage:       StageUpload,
			wantErr:     files.ErrUploadFailed,
			uploads:     1,
		},
		{
			name: "transformer panics",
			setup: func(t *testing.T, store *memStore) {
				store.objects["b/pic.jpg"] = jpegBytes(t, 200, 200)
			},
			transformer: panickyTransformer{},
			stage:       StageTransform,
			wantErr:     ErrPanic,
			uploads:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			tt.setup(t, store)
			p, tempDir := newTestProcessor(t, store, tt.transformer, "")

			outcome := p.Process(context.Background(), events.Notification{Bucket: "b", Key: "pic.jpg"})

			assert.True(t, outcome.Failed(), "unexpected outcome: %+v", outcome)
			assert.Equal(t, tt.stage, outcome.Stage)
			assert.ErrorIs(t, outcome.Err, tt.wantErr)
			assert.Len(t, store.uploads, tt.uploads)
			assertNoStagedFiles(t, tempDir)
		})
	}
}

func TestProcessDestinationOverride(t *testing.T) {
	store := newMemStore()
	store.objects["uploads/albums/2024/pic.png.jpg"] = jpegBytes(t, 50, 40)

	p, _ := newTestProcessor(t, store, thumbs.NewTransformer(), "thumbnails")
	outcome := p.Process(context.Background(), events.Notification{Bucket: "uploads", Key: "albums/2024/pic.png.jpg"})

	require.True(t, outcome.Succeeded(), "unexpected outcome: %+v", outcome)
	assert.Equal(t, files.NewS3Object("thumbnails", "resized-albums/2024/pic.png.jpg"), outcome.Thumbnail)
	assert.Contains(t, store.objects, "thumbnails/resized-albums/2024/pic.png.jpg")
}

func TestStagingPathsAreUnique(t *testing.T) {
	p, tempDir := newTestProcessor(t, newMemStore(), thumbs.NewTransformer(), "")

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		download, upload := p.stagingPaths("folder/pic.JPG")
		assert.NotEqual(t, download, upload)
		assert.False(t, seen[download] || seen[upload], "staging path reused")
		seen[download], seen[upload] = true, true

		assert.Equal(t, ".jpg", download[len(download)-4:])
		assert.Equal(t, tempDir, download[:len(tempDir)])
	}
}

func TestDestinationBucket(t *testing.T) {
	p, _ := newTestProcessor(t, newMemStore(), thumbs.NewTransformer(), "")
	assert.Equal(t, "photos-resized", p.DestinationBucket("photos"))

	p, _ = newTestProcessor(t, newMemStore(), thumbs.NewTransformer(), "shared-thumbs")
	assert.Equal(t, "shared-thumbs", p.DestinationBucket("photos"))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
