// The main package for the topiccrawler executable.
package main

import (
	"github.com/newsharvest/topiccrawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
