package main

import (
	"os"

	"github.com/hseo/vigil/cmd/vigil/commands"
)

// main is the entry point for the Vigil CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
