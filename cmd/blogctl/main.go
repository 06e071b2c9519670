// Package main is the entry point for blogctl.
package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-blog-server/internal/cli"
)

var version = "dev"

func main() {
	cmd := cli.NewRootCmd()
	cmd.Version = version

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
