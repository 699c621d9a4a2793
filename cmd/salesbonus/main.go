package main

import (
	"os"

	"github.com/wonny/salesbonus/cmd/salesbonus/commands"
)

// main is the entry point for the salesbonus CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/salesbonus [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
