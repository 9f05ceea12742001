package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/gardenbook/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "gardenbook",
	Short: "Garden and report management web UI",
	Long: `Gardenbook serves a web UI for managing gardens and reports stored in a
PocketBase-compatible backend. The devbackend command runs a local stand-in
for that backend.`,
	SilenceUsage: true,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(newServeCmd(cfg), newDevBackendCmd(cfg))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
