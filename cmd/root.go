// Package cmd defines the mitra command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mitra",
	Short: "Mitra - an assistant for small business questions",
	Long: `Mitra answers questions about running a micro, small, or medium
enterprise in India. Curated FAQ and video records answer common
questions directly; everything else falls back to Gemini.

Running mitra with no arguments starts an interactive chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
