package main

import (
	"os"

	"github.com/erpforge/orchestrator-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
