// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperflow CLI.
// Implements: prd001-discovery, prd002-triage, prd003-acquisition,
//             prd004-analysis, prd005-record-store (CLI surface).
// See docs/ARCHITECTURE.md § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperflow/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the paperflow CLI.
var rootCmd = &cobra.Command{
	Use:   "paperflow",
	Short: "Automated academic paper ingestion pipeline",
	Long: `paperflow watches academic sources for new papers, triages them against a
research-interest profile with a language model, retrieves the full documents,
and generates in-depth analysis reports.

Each pipeline phase is a subcommand: ingest discovers and triages candidates,
analyze acquires and reviews the relevant ones, papers inspects the stored
records. prompt and register support profile tuning and manual additions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperflow.yaml or ~/.config/paperflow/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperflow")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperflow"))
		}
	}

	viper.SetEnvPrefix("PAPERFLOW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
