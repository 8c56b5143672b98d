package docx

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"strconv"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Media is an image part stored under word/media.
type Media struct {
	Name        string // e.g. "image1.png"
	RelID       string // relationship id in document.xml.rels
	Ext         string
	ContentType string
	Data        []byte
	PixelWidth  int
	PixelHeight int
}

type imageFormat struct {
	ext         string
	contentType string
}

// formats maps image.DecodeConfig names to package parts. WebP is not a valid
// Word media type and is transcoded to PNG before embedding.
var formats = map[string]imageFormat{
	"png":  {"png", "image/png"},
	"jpeg": {"jpeg", "image/jpeg"},
	"gif":  {"gif", "image/gif"},
	"bmp":  {"bmp", "image/bmp"},
	"tiff": {"tiff", "image/tiff"},
}

// addMedia registers image bytes, reusing an existing part with the same content.
func (d *Document) addMedia(data []byte) (*Media, error) {
	data, cfg, format, err := normalizeImage(data)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if m, ok := d.mediaHash[key]; ok {
		return m, nil
	}

	n := len(d.media) + 1
	f := formats[format]
	m := &Media{
		Name:        "image" + strconv.Itoa(n) + "." + f.ext,
		RelID:       "rIdImg" + strconv.Itoa(n),
		Ext:         f.ext,
		ContentType: f.contentType,
		Data:        data,
		PixelWidth:  cfg.Width,
		PixelHeight: cfg.Height,
	}
	d.media = append(d.media, m)
	d.mediaHash[key] = m
	return m, nil
}

// normalizeImage detects the image format and converts formats Word cannot
// embed. It returns the bytes to store, their dimensions and format name.
func normalizeImage(data []byte) ([]byte, image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, image.Config{}, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, image.Config{}, "", fmt.Errorf("%w: empty image (%dx%d)", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	if format == "webp" {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, image.Config{}, "", fmt.Errorf("%w: decoding webp: %v", ErrUnsupportedImage, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, image.Config{}, "", fmt.Errorf("%w: transcoding webp: %v", ErrUnsupportedImage, err)
		}
		return buf.Bytes(), cfg, "png", nil
	}

	if _, ok := formats[format]; !ok {
		return nil, image.Config{}, "", fmt.Errorf("%w: format %q", ErrUnsupportedImage, format)
	}
	return data, cfg, format, nil
}

// extent computes the displayed size. A zero width keeps the native size at 96 DPI;
// otherwise the height follows the aspect ratio.
func extent(m *Media, width Length) (Length, Length) {
	if width <= 0 {
		return Length(m.PixelWidth) * EMUPerPixel, Length(m.PixelHeight) * EMUPerPixel
	}
	height := Length(float64(width) * float64(m.PixelHeight) / float64(m.PixelWidth))
	return width, height
}
