// Package main provides the entry point for the questsearch binary.
package main

import (
	"os"

	"github.com/kailas-cloud/questsearch/cmd/questsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
