package main

import (
	"os"

	"github.com/cwbudde/dws-front/cmd/dws/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitInvalidArguments)
	}
}
