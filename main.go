// The main package for the webscout executable.
package main

import (
	"github.com/ckolb-dev/webscout/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
