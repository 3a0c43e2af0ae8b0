package main

import (
	"github.com/dyike/stockinfo/internal/cli"
)

func main() {
	// Execute the root command
	cli.Run()
}
