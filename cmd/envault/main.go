package main

import (
	"os"

	"envault-cli/internal/cli"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
