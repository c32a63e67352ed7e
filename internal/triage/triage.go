// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package triage classifies discovered papers against a research-interest
// profile. Implements: prd002-triage (R1-R3);
//
//	docs/ARCHITECTURE.md § Triage.
//
// The classifier is fail-closed: any internal failure yields a
// not-relevant verdict with a diagnostic reason, so ambiguous input never
// triggers the cost-incurring acquisition and analysis stages.
package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/paperflow/internal/llm"
	"github.com/pdiddy/paperflow/pkg/types"
)

// Verdict is the triage outcome for one paper.
type Verdict struct {
	// Relevant reports whether the paper matches at least one interest
	// statement in the profile.
	Relevant bool `json:"is_relevant"`

	// Reason is a one-sentence rationale for the verdict. On failure it
	// carries the diagnostic instead.
	Reason string `json:"reason"`
}

// Classifier decides whether a paper is relevant to the research profile.
// Implementations must not let errors escape: uncertainty resolves to a
// not-relevant Verdict.
type Classifier interface {
	Classify(ctx context.Context, title, abstract string) Verdict
}

// triagePromptTmpl asks the model for a strict JSON relevance verdict.
// The interest statements are combined by logical OR: matching any one of
// them makes the paper relevant.
var triagePromptTmpl = template.Must(template.New("triage").Parse(`You are a rigorous academic assistant. Decide whether the following paper is highly relevant to my research interests.

My research interests (matching ANY of these makes the paper relevant):
{{.Interests}}

Paper title: {{.Title}}
Paper abstract: {{.Abstract}}

Filter strictly. Return true only when the paper clearly falls within my research areas.
Respond with a JSON object containing exactly two fields:
- "is_relevant": true or false
- "reason": a one-sentence explanation

Do not include any text outside the JSON object.
`))

// LLMClassifier classifies papers with a language-model call.
type LLMClassifier struct {
	backend llm.Backend
	profile types.Profile
}

// NewLLMClassifier builds a classifier bound to one research profile. The
// profile is fixed at construction; stage logic never consults ambient
// configuration.
func NewLLMClassifier(backend llm.Backend, profile types.Profile) *LLMClassifier {
	return &LLMClassifier{backend: backend, profile: profile}
}

// Classify asks the model for a relevance verdict. Errors, malformed
// responses, and missing JSON all collapse to a not-relevant verdict with
// the failure recorded in the reason.
func (c *LLMClassifier) Classify(ctx context.Context, title, abstract string) Verdict {
	prompt, err := renderTriagePrompt(c.profile.InterestStatement(), title, abstract)
	if err != nil {
		return failClosed(fmt.Errorf("rendering prompt: %w", err))
	}

	text, err := c.backend.Complete(ctx, "", prompt)
	if err != nil {
		return failClosed(fmt.Errorf("relevance check failed: %w", err))
	}

	raw, ok := llm.ExtractJSON(text)
	if !ok {
		return failClosed(fmt.Errorf("no JSON object in classifier response"))
	}

	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return failClosed(fmt.Errorf("parsing classifier response: %w", err))
	}
	if v.Reason == "" {
		v.Reason = "classifier returned no rationale"
	}
	return v
}

// failClosed converts an internal failure into the safe default verdict.
func failClosed(err error) Verdict {
	return Verdict{Relevant: false, Reason: fmt.Sprintf("triage error: %v", err)}
}

func renderTriagePrompt(interests, title, abstract string) (string, error) {
	var buf bytes.Buffer
	err := triagePromptTmpl.Execute(&buf, struct {
		Interests, Title, Abstract string
	}{interests, title, abstract})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
