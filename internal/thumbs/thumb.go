package thumbs

import (
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
)

const (
	DefaultMaxWidth  = 128
	DefaultMaxHeight = 128

	// DefaultMaxPixels caps the declared canvas size checked before decoding
	DefaultMaxPixels = 89_478_485
)

// Result describes a generated thumbnail
type Result struct {
	Format       string
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
}

// Transformer fits images within a bounding box without upscaling
type Transformer struct {
	maxWidth  int
	maxHeight int
	maxPixels int
}

func NewTransformer() *Transformer {
	return NewTransformerWithBox(DefaultMaxWidth, DefaultMaxHeight)
}

// NewTransformerWithBox creates a transformer with a custom bounding box
func NewTransformerWithBox(maxWidth, maxHeight int) *Transformer {
	return &Transformer{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		maxPixels: DefaultMaxPixels,
	}
}

// WithMaxPixels replaces the pixel ceiling for decoded sources
func (t *Transformer) WithMaxPixels(maxPixels int) *Transformer {
	t.maxPixels = maxPixels
	return t
}

// Transform reads the image at srcPath and writes its thumbnail to dstPath,
// re-encoded in the format the source was decoded from.
func (t *Transformer) Transform(srcPath, dstPath string) (Result, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return Result{}, ErrorTransform("open", srcPath, err)
	}
	defer func() { _ = src.Close() }()

	cfg, formatName, err := image.DecodeConfig(src)
	if err != nil {
		return Result{}, ErrorTransform("decode", srcPath, err)
	}

	// Decoding allocates the full declared canvas up front.
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(t.maxPixels) {
		return Result{}, ErrorImageTooLarge(srcPath, cfg.Width, cfg.Height, t.maxPixels)
	}

	format, err := imaging.FormatFromExtension(formatName)
	if err != nil {
		return Result{}, ErrorUnsupportedFormat(srcPath, formatName)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return Result{}, ErrorTransform("decode", srcPath, err)
	}

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, ErrorTransform("decode", srcPath, err)
	}

	thumb := imaging.Fit(img, t.maxWidth, t.maxHeight, imaging.Lanczos)

	dst, err := os.Create(dstPath)
	if err != nil {
		return Result{}, ErrorTransform("create", dstPath, err)
	}

	if err := imaging.Encode(dst, thumb, format); err != nil {
		_ = dst.Close()
		return Result{}, ErrorTransform("encode", dstPath, err)
	}

	if err := dst.Close(); err != nil {
		return Result{}, ErrorTransform("encode", dstPath, err)
	}

	sb := img.Bounds()
	tb := thumb.Bounds()
	return Result{
		Format:       formatName,
		Width:        tb.Dx(),
		Height:       tb.Dy(),
		SourceWidth:  sb.Dx(),
		SourceHeight: sb.Dy(),
	}, nil
}
