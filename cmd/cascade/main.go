// Package main provides the entry point for the cascade CLI.
package main

import (
	"os"

	"github.com/cascade-search/cascade/cmd/cascade/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
