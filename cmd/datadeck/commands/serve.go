package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"datadeck/internal/app"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the DataDeck HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			application, err := app.NewApplication()
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
}
