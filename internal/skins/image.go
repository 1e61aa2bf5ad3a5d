package skins

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/vovakirdan/tile2048/internal/core"
)

// DefaultImageSize is the edge length of imported tile images.
const DefaultImageSize = 100

// MaxImportBytes bounds the size of an image accepted by Import.
const MaxImportBytes = 10 << 20

const dataURIPrefix = "data:image/png;base64,"

// ErrNotDataURI is returned when an image reference cannot be decoded.
var ErrNotDataURI = errors.New("skins: not a base64 image data URI")

// Import decodes an image, crops the largest centred square, scales it to
// size×size and returns it as a PNG data URI.
func Import(r io.Reader, size int) (string, error) {
	if size <= 0 {
		size = DefaultImageSize
	}

	src, _, err := image.Decode(io.LimitReader(r, MaxImportBytes))
	if err != nil {
		return "", fmt.Errorf("skins: decode image: %w", err)
	}
	return normalize(src, size)
}

// ImportDataURI is Import for an image already encoded as a data URI.
func ImportDataURI(uri string, size int) (string, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	src, err := DecodeDataURI(uri)
	if err != nil {
		return "", err
	}
	return normalize(src, size)
}

// normalize crops the centred square of src and scales it to size×size.
func normalize(src image.Image, size int) (string, error) {
	crop := centerSquare(src.Bounds())
	if crop.Empty() {
		return "", fmt.Errorf("skins: image has no pixels")
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	return EncodeDataURI(dst)
}

// ImportFile is Import for a file on disk.
func ImportFile(path string, size int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("skins: open %s: %w", path, err)
	}
	defer f.Close()
	return Import(f, size)
}

// centerSquare returns the largest square centred in b.
func centerSquare(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x := b.Min.X + (b.Dx()-side)/2
	y := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}

// EncodeDataURI encodes img as a PNG data URI.
func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("skins: encode png: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURI decodes a base64 image data URI of any registered format.
func DecodeDataURI(uri string) (image.Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURI, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("skins: decode image: %w", err)
	}
	return img, nil
}

// DominantColor returns the alpha-weighted average colour of a data URI image.
// Fully transparent images return an error.
func DominantColor(uri string) (core.Color, error) {
	img, err := DecodeDataURI(uri)
	if err != nil {
		return core.ColorDefault, err
	}

	var r, g, b, weight uint64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// premultiplied 16-bit components
			pr, pg, pb, pa := img.At(x, y).RGBA()
			r += uint64(pr)
			g += uint64(pg)
			b += uint64(pb)
			weight += uint64(pa)
		}
	}
	if weight == 0 {
		return core.ColorDefault, fmt.Errorf("skins: image is fully transparent")
	}

	// un-premultiply and scale 16-bit to 8-bit
	return core.NewRGB(
		uint8(r*255/weight),
		uint8(g*255/weight),
		uint8(b*255/weight),
	), nil
}
