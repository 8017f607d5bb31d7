package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/99minutos/account-service/internal/core/domain"
)

// maxSourceDimension bounds either side of an upload before its pixels are
// decoded.
const maxSourceDimension = 4096

// normalize decodes a jpeg, png or gif upload, crops it to a centred square
// and scales it to size×size. The result is PNG encoded.
func normalize(src io.Reader, size int) ([]byte, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxSourceDimension || cfg.Height > maxSourceDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dx%d", domain.ErrInvalidFile, cfg.Width, cfg.Height, maxSourceDimension, maxSourceDimension)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, centredSquare(img.Bounds()), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

func centredSquare(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	switch {
	case w > h:
		x := b.Min.X + (w-h)/2
		return image.Rect(x, b.Min.Y, x+h, b.Max.Y)
	case h > w:
		y := b.Min.Y + (h-w)/2
		return image.Rect(b.Min.X, y, b.Max.X, y+w)
	}
	return b
}
