package main

import (
	"os"

	"github.com/rustyeddy/tradereflex/cmd/tradereflex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
