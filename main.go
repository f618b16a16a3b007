// ./main.go
package main

import (
	"github.com/qaops/insider-e2e/cmd"
)

// main is the entry point for the insider-e2e binary.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
