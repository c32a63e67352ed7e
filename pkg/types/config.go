// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperflow/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Profile describes the research interests the pipeline filters against.
// Constructed once at process start and passed into the orchestrator and
// classifier; stage logic never reads ambient configuration.
type Profile struct {
	// Interests lists independent research-interest statements. A paper
	// matching any one of them is relevant (OR combination).
	Interests []string `json:"interests" yaml:"interests"`

	// Sources names the enabled discovery sources ("arxiv", "sciencedirect").
	Sources []string `json:"sources" yaml:"sources"`

	// Journals lists target journals for sources that search by journal.
	Journals []string `json:"journals,omitempty" yaml:"journals,omitempty"`

	// AnalysisPromptFile optionally points at a custom analysis prompt
	// template. Empty means the built-in template.
	AnalysisPromptFile string `json:"analysis_prompt_file,omitempty" yaml:"analysis_prompt_file,omitempty"`
}

// InterestStatement renders the interest list as a numbered block for
// prompt embedding.
func (p Profile) InterestStatement() string {
	var b strings.Builder
	for i, interest := range p.Interests {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, interest)
	}
	return b.String()
}

// SourceEnabled reports whether the named source appears in the profile.
// An empty source list enables every source.
func (p Profile) SourceEnabled(name string) bool {
	if len(p.Sources) == 0 {
		return true
	}
	for _, s := range p.Sources {
		if s == name {
			return true
		}
	}
	return false
}

// StoreConfig holds settings for the record store.
type StoreConfig struct {
	// DataDir is the base directory for pipeline state (contains the
	// database file and the papers/ artifact directory).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ScoutConfig holds settings for the discovery stage.
type ScoutConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults caps the candidates fetched per source per run (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// ArxivQuery is the arXiv search expression (e.g. "cat:cs.CE OR cat:cs.AI").
	ArxivQuery string `json:"arxiv_query" yaml:"arxiv_query"`

	// Year restricts journal searches to one publication year (default: current).
	Year int `json:"year" yaml:"year"`

	// ElsevierAPIKey authenticates ScienceDirect requests.
	ElsevierAPIKey string `json:"elsevier_api_key,omitempty" yaml:"elsevier_api_key,omitempty"`

	// RequestsPerSecond limits the request rate against each source API
	// (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// TriageConfig holds settings for the relevance classification stage.
type TriageConfig struct {
	AIConfig `yaml:",inline"`
}

// AcquisitionConfig holds settings for the full-document acquisition stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// PapersDir is the directory holding downloaded artifacts.
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// RequestsPerSecond limits the download rate (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// SessionImage is the container image implementing the session-based
	// fetch strategy for sources that sit behind an authenticated or
	// scripted download path. Empty disables session fetching.
	SessionImage string `json:"session_image,omitempty" yaml:"session_image,omitempty"`
}

// AnalysisConfig holds settings for the analysis stage.
type AnalysisConfig struct {
	AIConfig `yaml:",inline"`

	// MaxDocumentChars truncates the document payload before the AI call
	// (default 60000). Zero keeps the full text.
	MaxDocumentChars int `json:"max_document_chars" yaml:"max_document_chars"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Profile     Profile           `json:"profile" yaml:"profile"`
	Store       StoreConfig       `json:"store" yaml:"store"`
	Scout       ScoutConfig       `json:"scout" yaml:"scout"`
	Triage      TriageConfig      `json:"triage" yaml:"triage"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Analysis    AnalysisConfig    `json:"analysis" yaml:"analysis"`
}
