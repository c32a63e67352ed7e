// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scout

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paperflow/internal/httputil"
	"github.com/pdiddy/paperflow/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivAdapter queries the arXiv API for recent submissions matching a
// category query (R2.1). Everything on arXiv is open access, so records
// carry IsOA=true and route to the direct download strategy.
type ArxivAdapter struct {
	cfg     types.ScoutConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewArxivAdapter builds an adapter from discovery settings. A nil
// httpClient falls back to http.DefaultClient.
func NewArxivAdapter(cfg types.ScoutConfig, httpClient *http.Client) *ArxivAdapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ArxivAdapter{
		cfg:     cfg,
		client:  httpClient,
		limiter: newLimiter(cfg.RequestsPerSecond),
	}
}

// Name returns the adapter identifier.
func (a *ArxivAdapter) Name() string { return "arxiv" }

// FetchCandidates queries arXiv sorted by submission date, newest first
// (R2.2).
func (a *ArxivAdapter) FetchCandidates(ctx context.Context) ([]types.PaperRecord, error) {
	query := a.cfg.ArxivQuery
	if query == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := a.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	isOA := true
	var records []types.PaperRecord
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		rec := types.PaperRecord{
			ID:       "arxiv:" + arxivID,
			Title:    strings.TrimSpace(entry.Title),
			Abstract: strings.Join(strings.Fields(entry.Summary), " "),
			URL:      strings.TrimSpace(entry.ID),
			Source:   "arxiv",
			IsOA:     &isOA,
			DOI:      strings.TrimSpace(entry.DOI),
		}

		for _, au := range entry.Authors {
			rec.Authors = append(rec.Authors, strings.TrimSpace(au.Name))
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			rec.PublishedDate = t
		}

		records = append(records, rec)
	}
	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	DOI       string        `xml:"doi"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041"). The version
// suffix is stripped so re-announced revisions dedup onto one record.
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
