package main

import (
	"os"

	"github.com/LLeom997/AlphBasket-sub000/cmd/quant/commands"
)

// main is the entry point for the basket CLI
// ⭐ single CLI entry point: go run ./cmd/quant [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
