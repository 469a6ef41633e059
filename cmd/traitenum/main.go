package main

import (
	"os"

	"github.com/traitenum/traitenum/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
