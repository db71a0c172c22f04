package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/rprtr258/catch-sigterm/internal/cli"
)

func run() int {
	if err := cli.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("app exited abnormally")
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
