package main

import (
	"os"

	"github.com/andresuchdata/dog-uploader/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("uploader failed")
		os.Exit(1)
	}
}
