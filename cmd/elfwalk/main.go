package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "elfwalk: %v\n", err)
		os.Exit(1)
	}
}
