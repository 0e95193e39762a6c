// The main package for the logo-discovery executable.
package main

import (
	"github.com/JakeFAU/logo-discovery/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
