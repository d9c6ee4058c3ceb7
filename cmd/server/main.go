package main // Entry point package

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/car-rental-reservation/internal/config"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:           "crms",
	Short:         "Car rental reservation service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFiles...)
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load before reading configuration (default .env)")
	rootCmd.AddCommand(serveCmd, notificationsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
