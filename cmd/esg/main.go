package main

import (
	"os"

	"github.com/wonny/esgproxy/backend/cmd/esg/commands"
)

// main is the entry point for the ESG proxy CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/esg [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
