package qrgen

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)

	return img
}

func sameColor(t *testing.T, want, got color.Color) {
	t.Helper()

	wr, wg, wb, wa := want.RGBA()
	gr, gg, gb, ga := got.RGBA()
	assert.Equal(t, [4]uint32{wr, wg, wb, wa}, [4]uint32{gr, gg, gb, ga})
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	cfg := New().Config()

	assert.Equal(t, 4, cfg.Version)
	assert.Equal(t, 4, cfg.Border)
	assert.Equal(t, "black", cfg.FillColor)
	assert.Equal(t, "white", cfg.BackColor)
	assert.Equal(t, 10, cfg.BoxSize)
	assert.True(t, cfg.Fit)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSetPropertiesPartial(t *testing.T) {
	t.Parallel()

	g := New()
	g.SetProperties(WithBorder(1), WithFillColor("red"))

	cfg := g.Config()
	assert.Equal(t, 1, cfg.Border)
	assert.Equal(t, "red", cfg.FillColor)
	assert.Equal(t, DefaultVersion, cfg.Version)
	assert.Equal(t, DefaultBackColor, cfg.BackColor)
	assert.Equal(t, DefaultBoxSize, cfg.BoxSize)
	assert.True(t, cfg.Fit)

	g.SetProperties()
	assert.Equal(t, cfg, g.Config())

	g.SetProperties(WithVersion(7), WithBoxSize(3), WithBackColor("#eee"), WithFit(false))

	cfg = g.Config()
	assert.Equal(t, 1, cfg.Border)
	assert.Equal(t, "red", cfg.FillColor)
	assert.Equal(t, 7, cfg.Version)
	assert.Equal(t, 3, cfg.BoxSize)
	assert.Equal(t, "#eee", cfg.BackColor)
	assert.False(t, cfg.Fit)
}

func TestGenerateWritesFile(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "hello.png")

	path, err := New().Generate("hello", out)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, out, path)
	assert.FileExists(t, path)

	img := decodePNG(t, path)

	// Version 4 is 33 modules, plus a 4 module border on each side.
	assert.Equal(t, (33+8)*10, img.Bounds().Dx())
	assert.Equal(t, (33+8)*10, img.Bounds().Dy())

	sameColor(t, color.White, img.At(0, 0))
	sameColor(t, color.White, img.At(39, 39))
	sameColor(t, color.Black, img.At(40, 40))
	sameColor(t, color.Black, img.At(49, 49))
}

func TestGenerateRelativePathIsAbsolute(t *testing.T) {
	dir := t.TempDir()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	path, err := New().Generate("hello", "")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, DefaultOutputFile, filepath.Base(path))
	assert.FileExists(t, filepath.Join(dir, DefaultOutputFile))
}

func TestGenerateCustomGeometry(t *testing.T) {
	t.Parallel()

	g := New(WithVersion(1), WithBorder(0), WithBoxSize(3), WithFillColor("#ff0000"), WithBackColor("rgb(0, 0, 255)"))

	path, err := g.Generate("hi", filepath.Join(t.TempDir(), "small.png"))
	require.NoError(t, err)

	img := decodePNG(t, path)
	assert.Equal(t, 21*3, img.Bounds().Dx())

	sameColor(t, color.RGBA{R: 0xff, A: 0xff}, img.At(0, 0))
	sameColor(t, color.RGBA{B: 0xff, A: 0xff}, img.At(3, 3))
}

func TestGenerateFitGrowsVersion(t *testing.T) {
	t.Parallel()

	data := "https://example.com/a/somewhat/longer/path?with=query"

	path, err := New(WithVersion(1)).Generate(data, filepath.Join(t.TempDir(), "fit.png"))
	require.NoError(t, err)

	img := decodePNG(t, path)
	assert.Greater(t, img.Bounds().Dx(), (21+8)*10)
}

func TestGeneratePinnedVersionTooLong(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "pinned.png")
	data := "https://example.com/a/somewhat/longer/path?with=query"

	_, err := New(WithVersion(1), WithFit(false)).Generate(data, out)
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestGenerateTooLongForAnyVersion(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "huge.png")

	_, err := New().Generate(strings.Repeat("qr", 1500), out)
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestGenerateTwiceIndependentFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g := New(WithBoxSize(4))
	before := g.Config()

	first, err := g.Generate("first", filepath.Join(dir, "a.png"))
	require.NoError(t, err)

	second, err := g.Generate("second", filepath.Join(dir, "b.png"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.FileExists(t, first)
	assert.FileExists(t, second)
	assert.Equal(t, before, g.Config())

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		err  error
	}{
		{name: "version zero", opts: []Option{WithVersion(0)}, err: ErrInvalidVersion},
		{name: "version above 40", opts: []Option{WithVersion(41)}, err: ErrInvalidVersion},
		{name: "negative border", opts: []Option{WithBorder(-1)}, err: ErrInvalidBorder},
		{name: "zero box size", opts: []Option{WithBoxSize(0)}, err: ErrInvalidBoxSize},
		{name: "huge box size", opts: []Option{WithBoxSize(math.MaxInt)}, err: ErrInvalidBoxSize},
		{name: "box size past image limit", opts: []Option{WithBoxSize(MaxImageSide / 40)}, err: ErrInvalidBoxSize},
		{name: "huge border", opts: []Option{WithBorder(math.MaxInt)}, err: ErrInvalidBorder},
		{name: "border past image limit", opts: []Option{WithBorder(MaxImageSide / 2), WithBoxSize(1)}, err: ErrInvalidBorder},
		{name: "bad fill color", opts: []Option{WithFillColor("blurple")}, err: ErrInvalidColor},
		{name: "bad back color", opts: []Option{WithBackColor("#12")}, err: ErrInvalidColor},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := filepath.Join(t.TempDir(), "qr.png")

			_, err := New(tt.opts...).Generate("hello", out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
			assert.NoFileExists(t, out)
		})
	}
}

func TestRenderAtImageLimit(t *testing.T) {
	t.Parallel()

	// 41 modules per side for version 4 with the default border.
	bts, err := New(WithBoxSize(MaxImageSide/41)).Render("hello", SVG)
	require.NoError(t, err)
	assert.NotEmpty(t, bts)
}

func TestGenerateUnwritablePath(t *testing.T) {
	t.Parallel()

	_, err := New().Generate("hello", filepath.Join(t.TempDir(), "missing", "qr.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestGenerateUnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := New().Generate("hello", filepath.Join(t.TempDir(), "qr.webp"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestGenerateLogsWrittenFile(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	g := New()
	g.SetLogger(log)

	path, err := g.Generate("hello", filepath.Join(t.TempDir(), "logged.svg"))
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "qr code written", entry.Message)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, path, entry.Data["path"])
	assert.Equal(t, 4, entry.Data["version"])
	assert.Equal(t, SVG, entry.Data["format"])
}
