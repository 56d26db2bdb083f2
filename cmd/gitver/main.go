// Package main is the gitver command.
package main

import (
	"os"

	"github.com/leapstack-labs/gitver/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
