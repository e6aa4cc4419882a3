package main

import (
	"os"

	"github.com/HansKimDWR/MetSim/cmd/metsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
