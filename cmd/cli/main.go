package main

import (
	"os"

	"github.com/keshon/chatlight/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
