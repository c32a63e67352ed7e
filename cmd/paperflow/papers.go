// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperflow/internal/store"
	"github.com/pdiddy/paperflow/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List stored papers and their pipeline state",
	RunE:  runPapers,
}

var reportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Print the analysis report for one paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	papersCmd.Flags().Bool("relevant", false, "only papers triaged relevant")
	papersCmd.Flags().String("status", "", "filter by download status (pending, downloaded, failed)")
	papersCmd.Flags().String("source", "", "filter by discovery source")
	papersCmd.Flags().String("analyzed", "", "filter by analysis state (yes or no)")
	papersCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(papersCmd)
	rootCmd.AddCommand(reportCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var f store.Filter
	if relevant, _ := cmd.Flags().GetBool("relevant"); relevant {
		f.Relevance = types.RelevanceRelevant
	}
	if status, _ := cmd.Flags().GetString("status"); status != "" {
		f.DownloadStatus = types.DownloadStatus(status)
	}
	f.Source, _ = cmd.Flags().GetString("source")
	switch analyzed, _ := cmd.Flags().GetString("analyzed"); analyzed {
	case "":
	case "yes":
		v := true
		f.Analyzed = &v
	case "no":
		v := false
		f.Analyzed = &v
	default:
		return fmt.Errorf("invalid --analyzed value (want yes or no)")
	}

	records, err := st.List(cmd.Context(), f)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("encoding papers: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	case "table":
		printTable(records)
		return nil
	default:
		return fmt.Errorf("invalid --format value %q", format)
	}
}

func printTable(records []types.PaperRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRELEVANCE\tSTATUS\tANALYZED\tTITLE")
	for _, rec := range records {
		analyzed := "no"
		if rec.Analyzed() {
			analyzed = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Relevance, rec.DownloadStatus, analyzed, truncateTitle(rec.Title, 60))
	}
	w.Flush()
	fmt.Printf("%d paper(s)\n", len(records))
}

func truncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max-3]) + "..."
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !rec.Analyzed() {
		return fmt.Errorf("paper %s has no analysis report yet", rec.ID)
	}

	fmt.Println(rec.AnalysisReport)
	return nil
}
