// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the paper lifecycle across discovery,
// triage, acquisition, and analysis. Implements: prd001-discovery (R4),
// prd002-triage (R4), prd003-acquisition (R5), prd004-analysis (R5);
//
//	docs/ARCHITECTURE.md § Orchestration.
//
// The orchestrator processes one record at a time and persists every
// stage outcome before moving on, so an interrupted run resumes from
// stored state without redoing completed work. Failures are isolated per
// record; only record-store errors abort a run.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paperflow/internal/convert"
	"github.com/pdiddy/paperflow/internal/fetch"
	"github.com/pdiddy/paperflow/internal/store"
	"github.com/pdiddy/paperflow/internal/triage"
	"github.com/pdiddy/paperflow/pkg/types"
)

// Acquirer retrieves the full document for one record. It never returns
// an error: the outcome is exactly downloaded or failed.
type Acquirer interface {
	Acquire(ctx context.Context, id, url, source string) fetch.Outcome
}

// Analyzer produces the report text for one record from exactly one
// input mode.
type Analyzer interface {
	Analyze(ctx context.Context, rec types.PaperRecord, docText string) (string, error)
}

// Orchestrator drives the stages over the shared record store.
type Orchestrator struct {
	store      *store.Store
	classifier triage.Classifier
	acquirer   Acquirer
	analyzer   Analyzer
	converter  convert.Converter
	papersDir  string
	w          io.Writer
}

// New wires an orchestrator. All collaborators are constructed by the
// caller; the orchestrator owns no configuration of its own.
func New(st *store.Store, classifier triage.Classifier, acquirer Acquirer, analyzer Analyzer, converter convert.Converter, papersDir string, w io.Writer) *Orchestrator {
	return &Orchestrator{
		store:      st,
		classifier: classifier,
		acquirer:   acquirer,
		analyzer:   analyzer,
		converter:  converter,
		papersDir:  papersDir,
		w:          w,
	}
}

// IngestSummary holds counts from one ingestion batch.
type IngestSummary struct {
	Stored     int
	Relevant   int
	Duplicates int
}

// Total returns the number of candidates considered.
func (s IngestSummary) Total() int {
	return s.Stored + s.Duplicates
}

// Ingest runs dedup and triage over a candidate batch. Known ids are
// skipped before classification so re-discovery never spends a model
// call and never touches stored verdicts. New candidates are classified
// first and inserted with their verdict in one step.
func (o *Orchestrator) Ingest(ctx context.Context, candidates []types.PaperRecord) (IngestSummary, error) {
	var summary IngestSummary

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		known, err := o.store.Exists(ctx, cand.ID)
		if err != nil {
			return summary, err
		}
		if known {
			fmt.Fprintf(o.w, "duplicate:  %s\n", cand.ID)
			summary.Duplicates++
			continue
		}

		v := o.classifier.Classify(ctx, cand.Title, cand.Abstract)
		if v.Relevant {
			cand.Relevance = types.RelevanceRelevant
		} else {
			cand.Relevance = types.RelevanceRejected
		}
		cand.RelevanceReason = v.Reason

		if err := o.store.Insert(ctx, &cand); err != nil {
			if err == store.ErrDuplicate {
				summary.Duplicates++
				continue
			}
			return summary, err
		}

		fmt.Fprintf(o.w, "stored:     %s (%s: %s)\n", cand.ID, cand.Relevance, v.Reason)
		summary.Stored++
		if v.Relevant {
			summary.Relevant++
		}
	}

	return summary, nil
}

// AnalyzeSummary holds counts from one analysis pass.
type AnalyzeSummary struct {
	Downloaded     int
	DownloadFailed int
	Analyzed       int
	AlreadyDone    int
	Failed         int
}

// HasFailures reports whether any record failed this pass.
func (s AnalyzeSummary) HasFailures() bool {
	return s.DownloadFailed > 0 || s.Failed > 0
}

// Analyze walks all relevant records and advances each as far as
// possible: acquire the document if not yet downloaded, then generate a
// report if none is stored. Each stage outcome is persisted before the
// next record starts. A record that fails conversion or analysis is
// logged and skipped; its report stays empty so the next run retries it.
func (o *Orchestrator) Analyze(ctx context.Context) (AnalyzeSummary, error) {
	var summary AnalyzeSummary

	records, err := o.store.List(ctx, store.Filter{Relevance: types.RelevanceRelevant})
	if err != nil {
		return summary, err
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if !rec.Downloaded() {
			outcome := o.acquirer.Acquire(ctx, rec.ID, rec.URL, rec.Source)
			if err := o.store.SetDownloadStatus(ctx, rec.ID, outcome); err != nil {
				return summary, err
			}
			rec.DownloadStatus = outcome
			if outcome == fetch.OutcomeFailed {
				summary.DownloadFailed++
				continue
			}
			summary.Downloaded++
		}

		if rec.Analyzed() {
			summary.AlreadyDone++
			continue
		}

		report, ok := o.analyzeRecord(ctx, rec)
		if !ok {
			summary.Failed++
			continue
		}

		if err := o.store.SetAnalysisReport(ctx, rec.ID, report); err != nil {
			return summary, err
		}
		fmt.Fprintf(o.w, "analyzed:   %s\n", rec.ID)
		summary.Analyzed++
	}

	return summary, nil
}

// analyzeRecord prepares the document input for one record and runs the
// analyzer. Records carrying inline full text use it directly; everything
// else is converted from the artifact at the canonical content path.
func (o *Orchestrator) analyzeRecord(ctx context.Context, rec types.PaperRecord) (string, bool) {
	docText := ""
	if rec.FullTextContent == "" {
		text, err := o.converter.ToText(fetch.ArtifactPath(o.papersDir, rec.ID))
		if err != nil {
			fmt.Fprintf(o.w, "failed:     %s (%v)\n", rec.ID, err)
			return "", false
		}
		docText = text
	}

	report, err := o.analyzer.Analyze(ctx, rec, docText)
	if err != nil {
		fmt.Fprintf(o.w, "failed:     %s (%v)\n", rec.ID, err)
		return "", false
	}
	return report, true
}
