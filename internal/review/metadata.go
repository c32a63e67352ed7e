// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/pdiddy/paperflow/internal/llm"
	"github.com/pdiddy/paperflow/pkg/types"
)

// SourceUpload tags records registered from local documents rather than
// discovered through a source adapter.
const SourceUpload = "upload"

// metadataMaxChars bounds the text sent for metadata extraction; the
// bibliographic fields live in the opening pages.
const metadataMaxChars = 10000

const metadataSystemPrompt = `You are a helpful assistant that extracts key information from academic papers. Given the content of a paper, extract the following information in JSON format:
1. title: the title of the paper
2. abstract: the abstract of the paper
3. authors: a list of author names
4. published_date: the publication date in YYYY-MM-DD form, if available

The output must be a JSON object with exactly those fields. If a field is not found, return an empty string or empty list for it. Do not include any text outside the JSON object.`

// paperMetadata is the model's answer to the metadata extraction prompt.
type paperMetadata struct {
	Title         string   `json:"title"`
	Abstract      string   `json:"abstract"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"published_date"`
}

// dateLayouts are tried in order when parsing the extracted date.
var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ExtractMetadata reads bibliographic fields out of converted document
// text and builds a record for a locally supplied paper. The record
// arrives pre-marked relevant and downloaded: a manually registered
// paper skips triage and acquisition and goes straight to analysis.
func ExtractMetadata(ctx context.Context, backend llm.Backend, docText, name string) (types.PaperRecord, error) {
	text := truncateDocument(docText, metadataMaxChars)

	resp, err := backend.Complete(ctx, metadataSystemPrompt, "Document text:\n"+text)
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("extracting metadata: %w", err)
	}

	raw, ok := llm.ExtractJSON(resp)
	if !ok {
		return types.PaperRecord{}, fmt.Errorf("no JSON object in metadata response")
	}

	var md paperMetadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return types.PaperRecord{}, fmt.Errorf("parsing metadata response: %w", err)
	}
	if md.Title == "" {
		return types.PaperRecord{}, fmt.Errorf("metadata response carries no title")
	}

	published := time.Now().UTC()
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, md.PublishedDate); err == nil {
			published = t
			break
		}
	}

	return types.PaperRecord{
		ID:              SourceUpload + ":" + name,
		Title:           md.Title,
		Abstract:        md.Abstract,
		Authors:         md.Authors,
		URL:             "https://www.google.com/search?q=" + url.QueryEscape(md.Title),
		PublishedDate:   published,
		Source:          SourceUpload,
		Relevance:       types.RelevanceRelevant,
		RelevanceReason: "registered from a local document",
		DownloadStatus:  types.DownloadDone,
	}, nil
}
