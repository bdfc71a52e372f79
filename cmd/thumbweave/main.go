// thumbweave - colour-block thumbnail generator
//
// thumbweave extracts the dominant colours of an image and renders
// thumbnails from every ordering of them, with a centred caption.
package main

import (
	"os"

	"github.com/jmylchreest/thumbweave/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
