package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env file next to the binary feeds ${VAR} expansion in the config
	// file and the LKND_* secret fallbacks.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
