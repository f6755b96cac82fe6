package main

import (
	"os"

	"github.com/ahmedmhm/bimdiff/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
