package main

import (
	"fmt"
	"log"

	qrgen "github.com/RashadAnsari/go-qrgen"
)

func main() {
	g := qrgen.New()

	path, err := g.Generate("https://rashadansari.github.io", qrgen.DefaultOutputFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	fmt.Printf("QR code created at: %s\n", path)

	g.SetProperties(
		qrgen.WithFillColor("#c00000"),
		qrgen.WithBackColor("#f5f5f5"),
		qrgen.WithBoxSize(6),
		qrgen.WithBorder(2),
	)

	for _, name := range []string{"qr.png", "qr.jpeg", "qr.svg", "qr.pdf"} {
		path, err := g.Generate("https://rashadansari.github.io", name)
		if err != nil {
			log.Fatal(err.Error())
		}

		fmt.Printf("QR code created at: %s\n", path)
	}
}
