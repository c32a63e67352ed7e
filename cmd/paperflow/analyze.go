// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperflow/internal/container"
	"github.com/pdiddy/paperflow/internal/convert"
	"github.com/pdiddy/paperflow/internal/fetch"
	"github.com/pdiddy/paperflow/internal/llm"
	"github.com/pdiddy/paperflow/internal/pipeline"
	"github.com/pdiddy/paperflow/internal/review"
	"github.com/pdiddy/paperflow/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Acquire and analyze all relevant papers",
	Long: `Analyze walks every relevant record and advances it as far as possible:
papers without a local document are downloaded and validated, papers without a
report are read and analyzed. Completed work is never redone; failed downloads
are retried on the next run.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	direct := &fetch.DirectStrategy{
		Client: newHTTPClient(cfg.Acquisition.HTTPConfig),
		Config: cfg.Acquisition.HTTPConfig,
	}

	// Session fetching and PDF conversion both need a container runtime.
	// Without one, direct downloads and inline full text still work.
	var session fetch.Strategy
	var converter convert.Converter
	rt, rtErr := container.DetectRuntime()
	if rtErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", rtErr)
		converter = unavailableConverter{err: rtErr}
	} else {
		if cfg.Acquisition.SessionImage != "" {
			s, err := fetch.NewSessionStrategy(rt, cfg.Acquisition.SessionImage)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: session strategy disabled: %v\n", err)
			} else {
				session = s
			}
		}
		c, err := convert.NewMarkitdownConverter(rt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: pdf conversion disabled: %v\n", err)
			converter = unavailableConverter{err: err}
		} else {
			converter = c
		}
	}

	svc := fetch.NewService(cfg.Acquisition, direct, session, os.Stdout)
	analyzer, err := review.NewAnalyzer(llm.NewClient(cfg.Analysis.AIConfig, nil), cfg.Analysis, cfg.Profile)
	if err != nil {
		return err
	}

	orch := pipeline.New(st, nil, svc, analyzer, converter, cfg.Acquisition.PapersDir, os.Stdout)

	summary, err := orch.Analyze(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("downloaded %d, analyzed %d, already done %d, failed %d\n",
		summary.Downloaded, summary.Analyzed, summary.AlreadyDone,
		summary.DownloadFailed+summary.Failed)
	if summary.HasFailures() {
		return fmt.Errorf("%d record(s) failed this pass", summary.DownloadFailed+summary.Failed)
	}
	return nil
}

// unavailableConverter surfaces the missing-runtime condition per record
// instead of aborting: records with inline full text never need it.
type unavailableConverter struct{ err error }

func (u unavailableConverter) ToText(string) (string, error) {
	return "", fmt.Errorf("pdf conversion unavailable: %w", u.err)
}
