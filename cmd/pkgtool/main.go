package main

import (
	"fmt"
	"os"

	"github.com/0xb0urn3/pkgtool/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
