// Package main is the entry point for the spendtrend CLI.
package main

import (
	"os"

	"spendtrend/cmd/spendtrend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
