package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"github.com/sirupsen/logrus"

	qrgen "github.com/RashadAnsari/go-qrgen"
	"github.com/RashadAnsari/go-qrgen/internal/config"
	"github.com/RashadAnsari/go-qrgen/internal/logger"
)

var errNoData = errors.New("no data to encode")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	err = run(cfg, log, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errNoData):
		os.Exit(2)
	default:
		log.WithError(err).Fatal("generate qr code")
	}
}

// run parses args over the loaded config and writes the QR code, or its data
// URI with -base64. Flags left unset keep the config value.
func run(cfg config.Config, log logrus.FieldLogger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("qrgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	output := fs.String("o", cfg.Output, "Output file; the extension selects the format (png, jpg, gif, bmp, tiff, svg, pdf)")
	version := fs.Int("version", cfg.Version, "QR symbol version (1-40)")
	border := fs.Int("border", cfg.Border, "Quiet zone width in modules")
	boxSize := fs.Int("box-size", cfg.BoxSize, "Pixels per module")
	fill := fs.String("fill", cfg.FillColor, "Fill color (name, #rrggbb or rgb(r, g, b))")
	back := fs.String("back", cfg.BackColor, "Background color")
	fit := fs.Bool("fit", cfg.Fit, "Grow the symbol past -version when the data does not fit")
	preview := fs.Bool("preview", false, "Also print the QR code to the terminal")
	base64 := fs.Bool("base64", false, "Print a base64 data URI instead of writing a file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "qrgen [flags] <data>\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	data := strings.Join(fs.Args(), " ")
	if data == "" {
		fs.Usage()
		return errNoData
	}

	g := qrgen.New(cfg.Options()...)
	g.SetLogger(log)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "version":
			g.SetProperties(qrgen.WithVersion(*version))
		case "border":
			g.SetProperties(qrgen.WithBorder(*border))
		case "box-size":
			g.SetProperties(qrgen.WithBoxSize(*boxSize))
		case "fill":
			g.SetProperties(qrgen.WithFillColor(*fill))
		case "back":
			g.SetProperties(qrgen.WithBackColor(*back))
		case "fit":
			g.SetProperties(qrgen.WithFit(*fit))
		}
	})

	if *preview {
		qrterminal.GenerateHalfBlock(data, qrterminal.H, stdout)
	}

	if *base64 {
		format, err := qrgen.FormatFromPath(*output)
		if err != nil {
			return err
		}

		bts, err := g.Render(data, format)
		if err != nil {
			return err
		}

		fmt.Fprintln(stdout, qrgen.DataURI(format, bts))

		return nil
	}

	path, err := g.Generate(data, *output)
	if err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}

	fmt.Fprintf(stdout, "QR code created at: %s\n", path)

	return nil
}
