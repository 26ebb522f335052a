package main

import (
	"os"

	"github.com/benefits-network/benefits-bpp/bpp/bppcli"
	"github.com/benefits-network/benefits-bpp/log"
)

func main() {
	app := bppcli.GetApp()
	if err := app.Run(os.Args); err != nil {
		log.API.Fatal(err)
	}
}
