package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/zombor/receipt-organizer/internal/commands"
	"github.com/zombor/receipt-organizer/internal/version"
)

func main() {
	_ = godotenv.Load()

	if err := commands.NewRootCommand(version.Version).Execute(); err != nil {
		os.Exit(1)
	}
}
