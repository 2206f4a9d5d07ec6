package main

import (
	"fmt"
	"os"

	"bidops-backend/internal/cli/commands"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "bidopsctl",
		Short: "BidOps administration tool",
	}

	rootCmd.AddCommand(
		commands.MigrateCmd(commands.EnvDB),
		commands.TenantCmd(commands.EnvDB),
		commands.UserCmd(commands.EnvDB),
		commands.FxCmd(commands.EnvDB),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
