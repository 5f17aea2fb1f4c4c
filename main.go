package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/clipd/clipd/internal/cli"
)

func main() {
	// Parse command-line arguments. A bare invocation falls through to
	// CLI.Execute's default, which lists recent history.
	var args cli.Args
	parser := arg.MustParse(&args)

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer cliHandler.Close()

	if err := cliHandler.Execute(&args); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println()
		parser.WriteUsage(os.Stderr)
		os.Exit(1)
	}
}
