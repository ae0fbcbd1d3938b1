package main

import (
	"os"

	"github.com/eschercloudai/burst/pkg/command"
)

func main() {
	c := command.Generate()

	if err := c.Execute(); err != nil {
		os.Exit(1)
	}
}
