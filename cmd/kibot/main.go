package main

import (
	"os"

	// Import output types so their init() registration runs
	_ "github.com/flaviut/kibot/pkg/collector"
)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
