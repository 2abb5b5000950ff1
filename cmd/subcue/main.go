package main

import (
	"os"

	"github.com/subcue/subcue/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
