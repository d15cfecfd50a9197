// Package main provides the cslkit command-line tool for Citation Style
// Language styles and locales.
package main

import (
	"os"

	"github.com/leapstack-labs/cslkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
