// Package cli implements the recapd command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "recapd",
	Short: "Meeting recording enrichment service",
	Long: `recapd turns meeting recordings into structured records.

A recording is transcribed with whisper.cpp, enriched with a local or
hosted LLM (summary, action items, topics, sentiment), persisted, and
indexed for semantic search.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to TOML config file")
}
