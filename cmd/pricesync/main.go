package main

import (
	"os"

	"github.com/wonny/pricesync/cmd/pricesync/commands"
)

// main is the entry point for the pricesync CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/pricesync [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
