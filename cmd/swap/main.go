package main

import (
	"os"

	"github.com/dmoreno/swap-cli/internal/app"
)

func main() {
	runner := app.NewRunner()
	os.Exit(runner.Run(os.Args[1:]))
}
