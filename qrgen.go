// Package qrgen renders QR codes to image files with configurable symbol
// version, border, module size and colors. Encoding is delegated to
// github.com/skip2/go-qrcode at the highest recovery level.
package qrgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

const (
	DefaultVersion   = 4
	DefaultBorder    = 4
	DefaultFillColor = "black"
	DefaultBackColor = "white"
	DefaultBoxSize   = 10

	// DefaultOutputFile is used by Generate when no output path is given.
	DefaultOutputFile = "qrcode5.png"

	MinVersion = 1
	MaxVersion = 40

	// MaxImageSide bounds the rendered image width and height in pixels.
	MaxImageSide = 1 << 14
)

var (
	ErrInvalidVersion = errors.New("invalid qr code version")
	ErrInvalidBorder  = errors.New("invalid border")
	ErrInvalidBoxSize = errors.New("invalid box size")
)

// Config holds the rendering parameters of a Generator.
type Config struct {
	// Symbol version (1-40). With Fit enabled it is the smallest version
	// used; otherwise the symbol is pinned to it.
	Version int

	// Quiet zone width in modules.
	Border int

	FillColor string
	BackColor string

	// Pixels per module.
	BoxSize int

	// Grow the symbol past Version when the payload does not fit.
	Fit bool
}

func DefaultConfig() Config {
	return Config{
		Version:   DefaultVersion,
		Border:    DefaultBorder,
		FillColor: DefaultFillColor,
		BackColor: DefaultBackColor,
		BoxSize:   DefaultBoxSize,
		Fit:       true,
	}
}

// Option overrides a single field of a Generator's Config.
type Option func(*Config)

func WithVersion(v int) Option {
	return func(c *Config) { c.Version = v }
}

func WithBorder(n int) Option {
	return func(c *Config) { c.Border = n }
}

func WithFillColor(spec string) Option {
	return func(c *Config) { c.FillColor = spec }
}

func WithBackColor(spec string) Option {
	return func(c *Config) { c.BackColor = spec }
}

func WithBoxSize(px int) Option {
	return func(c *Config) { c.BoxSize = px }
}

func WithFit(fit bool) Option {
	return func(c *Config) { c.Fit = fit }
}

// Generator is not safe for concurrent use while SetProperties is being
// called. Generate only reads the configuration.
type Generator struct {
	cfg Config
	log logrus.FieldLogger
}

func New(opts ...Option) *Generator {
	g := &Generator{
		cfg: DefaultConfig(),
		log: logrus.StandardLogger(),
	}

	g.SetProperties(opts...)

	return g
}

// SetProperties applies the given options. Fields without an option keep
// their current value. Values are checked by Generate, not here.
func (g *Generator) SetProperties(opts ...Option) {
	for _, opt := range opts {
		opt(&g.cfg)
	}
}

// Config returns a copy of the current configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

func (g *Generator) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}

	g.log = l
}

// Generate encodes data, renders it in the format implied by the extension
// of outputFile and writes the result. An empty outputFile means
// DefaultOutputFile. The absolute path of the written file is returned.
func (g *Generator) Generate(data, outputFile string) (string, error) {
	if outputFile == "" {
		outputFile = DefaultOutputFile
	}

	format, err := FormatFromPath(outputFile)
	if err != nil {
		return "", err
	}

	s, err := g.build(data)
	if err != nil {
		return "", err
	}

	bts, err := s.encode(format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(outputFile, bts, os.FileMode(0644)); err != nil {
		return "", err
	}

	path, err := filepath.Abs(outputFile)
	if err != nil {
		return "", err
	}

	g.log.WithFields(logrus.Fields{
		"version": s.version,
		"modules": len(s.bitmap),
		"format":  format,
		"path":    path,
	}).Debug("qr code written")

	return path, nil
}

// Render is Generate without the file: it returns the encoded image bytes.
func (g *Generator) Render(data string, format Format) ([]byte, error) {
	s, err := g.build(data)
	if err != nil {
		return nil, err
	}

	return s.encode(format)
}

func (g *Generator) build(data string) (*symbol, error) {
	cfg := g.cfg

	if cfg.Border < 0 {
		return nil, fmt.Errorf("%w: %d (expected >= 0)", ErrInvalidBorder, cfg.Border)
	}

	if cfg.BoxSize <= 0 {
		return nil, fmt.Errorf("%w: %d (expected > 0)", ErrInvalidBoxSize, cfg.BoxSize)
	}

	fg, err := ParseColor(cfg.FillColor)
	if err != nil {
		return nil, fmt.Errorf("fill color: %w", err)
	}

	bg, err := ParseColor(cfg.BackColor)
	if err != nil {
		return nil, fmt.Errorf("back color: %w", err)
	}

	q, err := encode(data, cfg.Version, cfg.Fit)
	if err != nil {
		return nil, err
	}

	s := &symbol{
		bitmap:          q.Bitmap(),
		version:         q.VersionNumber,
		border:          cfg.Border,
		boxSize:         cfg.BoxSize,
		foregroundColor: fg,
		backgroundColor: bg,
	}

	// Checked in this order so modules*boxSize cannot overflow.
	if cfg.Border > MaxImageSide || s.modules() > MaxImageSide {
		return nil, fmt.Errorf("%w: %d (image wider than %d pixels)", ErrInvalidBorder, cfg.Border, MaxImageSide)
	}

	if cfg.BoxSize > MaxImageSide/s.modules() {
		return nil, fmt.Errorf("%w: %d (image wider than %d pixels)", ErrInvalidBoxSize, cfg.BoxSize, MaxImageSide)
	}

	return s, nil
}

// encode builds the QR code at the highest recovery level. With fit the
// smallest version not below version is chosen.
func encode(data string, version int, fit bool) (*qrcode.QRCode, error) {
	// The library exits the process on an out of range forced version.
	if version < MinVersion || version > MaxVersion {
		return nil, fmt.Errorf("%w: %d (expected %d-%d)", ErrInvalidVersion, version, MinVersion, MaxVersion)
	}

	var (
		q   *qrcode.QRCode
		err error
	)

	if fit {
		q, err = qrcode.New(data, qrcode.Highest)
		if err != nil {
			return nil, err
		}

		if q.VersionNumber < version {
			q, err = qrcode.NewWithForcedVersion(data, version, qrcode.Highest)
		}
	} else {
		q, err = qrcode.NewWithForcedVersion(data, version, qrcode.Highest)
	}

	if err != nil {
		return nil, err
	}

	q.DisableBorder = true

	return q, nil
}
