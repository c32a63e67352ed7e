// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperflow/internal/llm"
	"github.com/pdiddy/paperflow/internal/pipeline"
	"github.com/pdiddy/paperflow/internal/scout"
	"github.com/pdiddy/paperflow/internal/store"
	"github.com/pdiddy/paperflow/internal/triage"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Discover new papers and triage them against the research profile",
	Long: `Ingest queries the enabled discovery sources for fresh candidates, drops
papers already stored, classifies the rest against the research-interest
profile, and stores each with its verdict. Known papers are never
re-classified.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Int("max-results", 0, "override candidates fetched per source")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		cfg.Scout.MaxResults = maxResults
	}
	if len(cfg.Profile.Interests) == 0 {
		return fmt.Errorf("no research interests configured; set profile.interests in the config file")
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	client := newHTTPClient(cfg.Scout.HTTPConfig)

	var adapters []scout.Adapter
	if cfg.Profile.SourceEnabled("arxiv") {
		adapters = append(adapters, scout.NewArxivAdapter(cfg.Scout, client))
	}
	if cfg.Profile.SourceEnabled("sciencedirect") && cfg.Scout.ElsevierAPIKey != "" && len(cfg.Profile.Journals) > 0 {
		adapters = append(adapters, scout.NewScienceDirectAdapter(cfg.Scout, cfg.Profile, client))
	}
	if len(adapters) == 0 {
		return fmt.Errorf("no discovery sources enabled")
	}

	classifier := triage.NewLLMClassifier(llm.NewClient(cfg.Triage.AIConfig, nil), cfg.Profile)
	orch := pipeline.New(st, classifier, nil, nil, nil, cfg.Acquisition.PapersDir, os.Stdout)

	ctx := cmd.Context()
	var total pipeline.IngestSummary
	for _, adapter := range adapters {
		fmt.Printf("discovering via %s\n", adapter.Name())

		candidates, err := adapter.FetchCandidates(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s discovery: %v\n", adapter.Name(), err)
		}

		summary, err := orch.Ingest(ctx, candidates)
		total.Stored += summary.Stored
		total.Relevant += summary.Relevant
		total.Duplicates += summary.Duplicates
		if err != nil {
			return err
		}
	}

	fmt.Printf("ingested %d new paper(s), %d relevant, %d duplicate(s) skipped\n",
		total.Stored, total.Relevant, total.Duplicates)
	return nil
}
