package main

import (
	"os"

	"github.com/fwb-online/qexpand/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
