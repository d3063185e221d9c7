package qrgen

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	svgo "github.com/ajstarks/svgo"
	"github.com/signintech/gopdf"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	SVG  Format = "svg"
	PDF  Format = "pdf"
)

var extFormats = map[string]Format{
	".png":  PNG,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".gif":  GIF,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
	".svg":  SVG,
	".pdf":  PDF,
}

var mimeTypes = map[Format]string{
	PNG:  "image/png",
	JPEG: "image/jpeg",
	GIF:  "image/gif",
	BMP:  "image/bmp",
	TIFF: "image/tiff",
	SVG:  "image/svg+xml",
	PDF:  "application/pdf",
}

// FormatFromPath picks the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))

	f, ok := extFormats[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	return f, nil
}

func (f Format) MIMEType() string {
	return mimeTypes[f]
}

// DataURI returns bts as a base64 data URI of the given format.
func DataURI(f Format, bts []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", f.MIMEType(), base64.StdEncoding.EncodeToString(bts))
}

// symbol is an encoded QR code together with its drawing options.
type symbol struct {
	// Module bitmap without quiet zone.
	bitmap  [][]bool
	version int

	border  int
	boxSize int

	foregroundColor color.Color
	backgroundColor color.Color
}

// modules is the side of the symbol in modules, quiet zone included.
func (s *symbol) modules() int {
	return len(s.bitmap) + 2*s.border
}

// size is the side of the rendered image in pixels.
func (s *symbol) size() int {
	return s.modules() * s.boxSize
}

// dark reports whether the module at (x, y) is set. Coordinates include the
// quiet zone.
func (s *symbol) dark(x, y int) bool {
	x -= s.border
	y -= s.border

	if y < 0 || y >= len(s.bitmap) || x < 0 || x >= len(s.bitmap[y]) {
		return false
	}

	return s.bitmap[y][x]
}

func (s *symbol) encode(f Format) ([]byte, error) {
	switch f {
	case PNG:
		return s.png()
	case JPEG:
		return s.jpeg()
	case GIF:
		return s.gif()
	case BMP:
		return s.bmp()
	case TIFF:
		return s.tiff()
	case SVG:
		return s.svg()
	case PDF:
		return s.pdf()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

func (s *symbol) image() *image.Paletted {
	size := s.size()

	rect := image.Rectangle{Min: image.Point{}, Max: image.Point{X: size, Y: size}}

	// Index 0 is the background so the zero value needs no writes.
	p := color.Palette([]color.Color{s.backgroundColor, s.foregroundColor})
	img := image.NewPaletted(rect, p)

	for y := 0; y < size; y++ {
		my := y / s.boxSize

		for x := 0; x < size; x++ {
			if s.dark(x/s.boxSize, my) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	return img
}

func (s *symbol) png() ([]byte, error) {
	encoder := png.Encoder{CompressionLevel: png.BestCompression}

	var b bytes.Buffer

	if err := encoder.Encode(&b, s.image()); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (s *symbol) jpeg() ([]byte, error) {
	var b bytes.Buffer

	if err := jpeg.Encode(&b, s.image(), &jpeg.Options{Quality: jpeg.DefaultQuality}); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (s *symbol) gif() ([]byte, error) {
	var b bytes.Buffer

	if err := gif.Encode(&b, s.image(), nil); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (s *symbol) bmp() ([]byte, error) {
	var b bytes.Buffer

	if err := bmp.Encode(&b, s.image()); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (s *symbol) tiff() ([]byte, error) {
	var b bytes.Buffer

	if err := tiff.Encode(&b, s.image(), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (s *symbol) pdf() ([]byte, error) {
	size := float64(s.size())

	var b bytes.Buffer

	pdf := gopdf.GoPdf{}

	rect := gopdf.Rect{W: size, H: size}

	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: rect})
	pdf.AddPage()

	if err := pdf.ImageFrom(s.image(), 0, 0, &rect); err != nil {
		return nil, err
	}

	if err := pdf.Write(&b); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (s *symbol) svg() ([]byte, error) {
	var b bytes.Buffer

	size := s.size()

	svg := svgo.New(&b)

	svg.Start(size, size)
	svg.Rect(0, 0, size, size, fillStyle(s.backgroundColor))
	svg.Group(fillStyle(s.foregroundColor))
	svg.Scale(float64(s.boxSize))

	for y := 0; y < len(s.bitmap); y++ {
		for x := 0; x < len(s.bitmap[y]); x++ {
			if s.bitmap[y][x] {
				svg.Rect(x+s.border, y+s.border, 1, 1)
			}
		}
	}

	svg.Gend()
	svg.Gend()
	svg.End()

	return b.Bytes(), nil
}

func fillStyle(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)

	return fmt.Sprintf("fill: rgb(%d, %d, %d); fill-opacity: %.2f",
		n.R, n.G, n.B, float64(n.A)/255,
	)
}
