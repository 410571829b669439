// Package main is the entry point for the hearth CLI.
package main

import (
	"os"

	"github.com/hearth-io/hearth/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
