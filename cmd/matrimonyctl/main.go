package main

import (
	"os"

	"github.com/787516/Matrimonial/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
