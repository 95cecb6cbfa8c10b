package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/zotcast/zotcast/internal/adapters/driving/cli"
)

func main() {
	// Secrets may live in a .env next to the binary; absence is fine.
	_ = godotenv.Load()

	err := cli.Execute()
	cli.Cleanup()
	if err != nil {
		os.Exit(1)
	}
}
