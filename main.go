// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Hostwarden.
//
// Usage:
//
//	go run . [flags]
//	./hostwarden [flags]
//
// This launches the Hostwarden CLI. See --help for options.
package main

import (
	"os"

	"github.com/toeirei/hostwarden/ui/cli"
)

// main is the entrypoint for the Hostwarden CLI.
func main() {
	// Cobra reports the error itself; only the exit code is ours.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
