// Package main provides the leapdash CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapdash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
