// Command lateinit compiles class declarations and runs conformance
// scenarios against late-initialized property guards.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/lateinit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
