// Package config loads generator defaults from the environment. A .env file
// in the working directory is read first if present.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	qrgen "github.com/RashadAnsari/go-qrgen"
)

// Config mirrors qrgen.Config plus CLI settings. The envDefault tags repeat
// the qrgen.Default* constants and must be kept equal to them.
type Config struct {
	Version   int    `env:"QRGEN_VERSION" envDefault:"4"`
	Border    int    `env:"QRGEN_BORDER" envDefault:"4"`
	BoxSize   int    `env:"QRGEN_BOX_SIZE" envDefault:"10"`
	FillColor string `env:"QRGEN_FILL_COLOR" envDefault:"black"`
	BackColor string `env:"QRGEN_BACK_COLOR" envDefault:"white"`
	Fit       bool   `env:"QRGEN_FIT" envDefault:"true"`

	// Same as qrgen.DefaultOutputFile.
	Output string `env:"QRGEN_OUTPUT" envDefault:"qrcode5.png"`

	LogLevel  string `env:"QRGEN_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"QRGEN_LOG_FORMAT" envDefault:"text"`
}

func Load() (Config, error) {
	// Missing .env is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// Options converts the loaded values into generator options.
func (c Config) Options() []qrgen.Option {
	return []qrgen.Option{
		qrgen.WithVersion(c.Version),
		qrgen.WithBorder(c.Border),
		qrgen.WithBoxSize(c.BoxSize),
		qrgen.WithFillColor(c.FillColor),
		qrgen.WithBackColor(c.BackColor),
		qrgen.WithFit(c.Fit),
	}
}
