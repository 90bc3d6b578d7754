// Command timbre runs the chorus pipeline stages on local directories.
//
// Usage:
//
//	timbre [flags] <stage> [--input DIR] [--output DIR]
//	timbre pipeline --root DIR
package main

import (
	"fmt"
	"os"

	"github.com/veedubyou/timbre/src/cli/internal/commands"
	"github.com/veedubyou/timbre/src/shared/lib/executor"
)

func main() {
	root := commands.NewRootCommand(commands.Dependencies{
		Executor: executor.BinaryFileExecutor{},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
