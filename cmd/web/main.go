// Command web runs the DataDeck HTTP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"datadeck/internal/app"
)

func main() {
	// A missing .env is fine, configuration falls back to defaults.
	_ = godotenv.Load()

	application, err := app.NewApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}
