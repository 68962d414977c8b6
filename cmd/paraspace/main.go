package main

import (
	"os"

	"github.com/gitrdm/paraspace/cmd/paraspace/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
