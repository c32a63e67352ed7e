// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review generates structured analysis reports for relevant
// papers. Implements: prd004-analysis (R1-R4);
//
//	docs/ARCHITECTURE.md § Analysis.
//
// The analyzer is fail-soft: when the model call fails, it returns a
// textual error marker as the report instead of an error, so the
// orchestrator persists something and the failure is visible to readers
// of the record.
package review

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/pdiddy/paperflow/internal/llm"
	"github.com/pdiddy/paperflow/pkg/types"
)

// defaultMaxDocumentChars bounds the document payload sent to the model
// when the configuration does not set a budget.
const defaultMaxDocumentChars = 60000

// defaultAnalysisPrompt is the built-in system prompt. A profile may
// replace it wholesale via AnalysisPromptFile.
const defaultAnalysisPrompt = `You are a senior reviewer working across applied machine learning and engineering domains.
Your task is to read an academic paper and write an in-depth analysis report for a PhD student working in the field.

Use Markdown and follow this structure exactly:

# 1. Core Contribution
- Summarize in one sentence the problem the paper solves.
- What is the central method or model proposed? Name the specific architectures or mechanisms involved.

# 2. Technical Implementation
- **Data**: What datasets are used? Are they public?
- **Inputs and outputs**: What are the model's input features and prediction targets?
- **Baselines**: How much improvement over the state of the art is reported?

# 3. Strengths and Weaknesses
- **Strengths**: list 2-3 points.
- **Weaknesses**: list 2-3 points, such as limited data, doubtful generalization, or unmodeled real-world complexity.

# 4. Implications
- Can the methodology transfer to adjacent problems in the field?
- What would be the hardest part of reproducing the work?

Stay objective and critical. Do not merely restate the abstract.`

// Analyzer produces one report per paper through a language-model call.
type Analyzer struct {
	backend llm.Backend
	cfg     types.AnalysisConfig
	prompt  string
}

// NewAnalyzer builds an analyzer bound to one research profile. When the
// profile names a custom analysis prompt file, it is read once here;
// failure to read it is a construction error, not a per-paper one.
func NewAnalyzer(backend llm.Backend, cfg types.AnalysisConfig, profile types.Profile) (*Analyzer, error) {
	prompt := defaultAnalysisPrompt
	if profile.AnalysisPromptFile != "" {
		data, err := os.ReadFile(profile.AnalysisPromptFile)
		if err != nil {
			return nil, fmt.Errorf("reading analysis prompt %s: %w", profile.AnalysisPromptFile, err)
		}
		prompt = string(data)
	}
	return &Analyzer{backend: backend, cfg: cfg, prompt: prompt}, nil
}

// Analyze generates a report for one paper. Exactly one input mode must
// be supplied: docText holds text converted from a retrieved artifact,
// while an inline full text travels on the record itself. Supplying both
// or neither is a precondition violation returned as an error. A failed
// model call is not an error: the returned report carries the failure
// marker instead.
func (a *Analyzer) Analyze(ctx context.Context, rec types.PaperRecord, docText string) (string, error) {
	inline := rec.FullTextContent
	switch {
	case docText != "" && inline != "":
		return "", fmt.Errorf("both document text and inline full text supplied for %s", rec.ID)
	case docText == "" && inline == "":
		return "", fmt.Errorf("no document text available for %s", rec.ID)
	}

	text := docText
	if text == "" {
		text = inline
	}

	maxChars := a.cfg.MaxDocumentChars
	if maxChars <= 0 {
		maxChars = defaultMaxDocumentChars
	}
	text = truncateDocument(text, maxChars)

	user := fmt.Sprintf("Paper title: %s\n\nFull text:\n%s", rec.Title, text)

	report, err := a.backend.Complete(ctx, a.prompt, user)
	if err != nil {
		return fmt.Sprintf("analysis failed: %v", err), nil
	}
	return report, nil
}

// truncateDocument cuts the text to at most max bytes without splitting
// a multi-byte rune.
func truncateDocument(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
