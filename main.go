// Package main provides the entrypoint for traffic-dash.
package main

import (
	"os"

	"github.com/isometry/traffic-dash/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
