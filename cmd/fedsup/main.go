package main

import (
	"os"

	"github.com/edsu/fedsup/cmd/fedsup/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
