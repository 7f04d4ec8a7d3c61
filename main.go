package main

import (
	"os"

	"github.com/rlzoo/zoo-hub/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
