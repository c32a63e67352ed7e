// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paperflow/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "paperflow/0.1"
	defaultModel     = "claude-sonnet-4-5"
)

// loadConfig assembles the pipeline configuration from the viper-managed
// config file plus the secrets directory. Built once per command
// invocation; stage logic receives the result by value and never reads
// viper directly.
func loadConfig() types.PipelineConfig {
	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("acquisition.papers_dir", "data/papers")
	viper.SetDefault("scout.max_results", 10)
	viper.SetDefault("scout.arxiv_query", "cat:cs.AI OR cat:cs.CE")
	viper.SetDefault("scout.requests_per_second", 1.0)
	viper.SetDefault("acquisition.requests_per_second", 1.0)
	viper.SetDefault("analysis.max_document_chars", 60000)
	viper.SetDefault("triage.model", defaultModel)
	viper.SetDefault("analysis.model", defaultModel)
	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("http.user_agent", defaultUserAgent)

	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}

	anthropicKey := loadedSecrets.Get("anthropic-api-key", viper.GetString("ai.api_key"))

	return types.PipelineConfig{
		Profile: types.Profile{
			Interests:          viper.GetStringSlice("profile.interests"),
			Sources:            viper.GetStringSlice("profile.sources"),
			Journals:           viper.GetStringSlice("profile.journals"),
			AnalysisPromptFile: viper.GetString("profile.analysis_prompt_file"),
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		Scout: types.ScoutConfig{
			HTTPConfig:        httpCfg,
			MaxResults:        viper.GetInt("scout.max_results"),
			ArxivQuery:        viper.GetString("scout.arxiv_query"),
			Year:              viper.GetInt("scout.year"),
			ElsevierAPIKey:    loadedSecrets.Get("elsevier-api-key", viper.GetString("scout.elsevier_api_key")),
			RequestsPerSecond: viper.GetFloat64("scout.requests_per_second"),
		},
		Triage: types.TriageConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("triage.model"),
				APIKey:     anthropicKey,
				MaxRetries: viper.GetInt("triage.max_retries"),
			},
		},
		Acquisition: types.AcquisitionConfig{
			HTTPConfig:        httpCfg,
			PapersDir:         viper.GetString("acquisition.papers_dir"),
			RequestsPerSecond: viper.GetFloat64("acquisition.requests_per_second"),
			SessionImage:      viper.GetString("acquisition.session_image"),
		},
		Analysis: types.AnalysisConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("analysis.model"),
				APIKey:     anthropicKey,
				MaxRetries: viper.GetInt("analysis.max_retries"),
			},
			MaxDocumentChars: viper.GetInt("analysis.max_document_chars"),
		},
	}
}

// newHTTPClient builds the client shared by one command invocation.
func newHTTPClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
