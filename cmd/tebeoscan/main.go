package main

import (
	"os"

	"tebeosfera-scraper/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
