package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/satriahrh/lintas/internal/config"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:          "lintas",
	Short:        "Live speech translation",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(func() {
		config.LoadDotEnv()
	})

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json or console)")
	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
