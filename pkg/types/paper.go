// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperflow pipeline.
// Implements: prd001-discovery (PaperRecord);
//
//	prd002-triage (Relevance);
//	prd003-acquisition (DownloadStatus);
//	prd004-analysis (analysis report fields).
//
// See docs/ARCHITECTURE.md § Data Model.
package types

import "time"

// Relevance is the triage verdict for a paper. A record stays unknown
// until the triage stage has run exactly once.
type Relevance string

const (
	RelevanceUnknown  Relevance = "unknown"
	RelevanceRelevant Relevance = "relevant"
	RelevanceRejected Relevance = "irrelevant"
)

// DownloadStatus tracks full-document acquisition for a paper.
// Terminal once downloaded; failed is retried on the next run.
type DownloadStatus string

const (
	DownloadPending DownloadStatus = "pending"
	DownloadDone    DownloadStatus = "downloaded"
	DownloadFailed  DownloadStatus = "failed"
)

// PaperRecord is the central entity of the pipeline: one row per distinct
// upstream document, keyed by the source-qualified identifier.
type PaperRecord struct {
	// ID is the stable natural key: the source-native identifier
	// namespaced with its source name (e.g. "arxiv:2301.07041").
	// Assigned once at discovery; never changes.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// URL points at the upstream document (abstract page or article link).
	URL string `json:"url" yaml:"url"`

	// PublishedDate is the publication or preprint date.
	PublishedDate time.Time `json:"published_date" yaml:"published_date"`

	// Source identifies which adapter discovered this record
	// (e.g. "arxiv", "sciencedirect").
	Source string `json:"source" yaml:"source"`

	// IsOA reports whether the paper is open access, when the source
	// exposes that information.
	IsOA *bool `json:"is_oa,omitempty" yaml:"is_oa,omitempty"`

	// DOI is the paper's DOI, when the source provides one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// FullTextContent holds inline full text for sources that embed it
	// (e.g. structured XML article bodies). Empty for PDF-only sources.
	FullTextContent string `json:"full_text_content,omitempty" yaml:"full_text_content,omitempty"`

	// DiscoveredAt is set once when the record is created.
	DiscoveredAt time.Time `json:"discovered_at" yaml:"discovered_at"`

	// Relevance is the triage verdict. Irrelevant records never reach
	// acquisition or analysis.
	Relevance Relevance `json:"relevance" yaml:"relevance"`

	// RelevanceReason is the classifier's rationale, set atomically with
	// Relevance.
	RelevanceReason string `json:"relevance_reason,omitempty" yaml:"relevance_reason,omitempty"`

	// DownloadStatus drives whether acquisition is attempted or retried.
	DownloadStatus DownloadStatus `json:"download_status" yaml:"download_status"`

	// AnalysisReport is the structured report text. Non-empty means the
	// analysis stage is complete and is never re-run for this record.
	AnalysisReport string `json:"analysis_report,omitempty" yaml:"analysis_report,omitempty"`
}

// Triaged reports whether the relevance stage has run for this record.
func (p *PaperRecord) Triaged() bool {
	return p.Relevance == RelevanceRelevant || p.Relevance == RelevanceRejected
}

// Downloaded reports whether a verified full-document artifact exists
// for this record.
func (p *PaperRecord) Downloaded() bool {
	return p.DownloadStatus == DownloadDone
}

// Analyzed reports whether the analysis stage has completed. Presence of
// the report is the sole completion marker.
func (p *PaperRecord) Analyzed() bool {
	return p.AnalysisReport != ""
}
