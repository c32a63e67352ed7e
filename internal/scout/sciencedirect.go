// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paperflow/internal/httputil"
	"github.com/pdiddy/paperflow/pkg/types"
)

// Elsevier API endpoints. Vars so tests can substitute httptest servers.
var (
	sciencedirectSearchBase  = "https://api.elsevier.com/content/search/sciencedirect"
	sciencedirectArticleBase = "https://api.elsevier.com/content/article/doi"
)

// ScienceDirectAdapter searches Elsevier journals and retrieves article
// full text inline (R3.1). Articles the API key can access arrive with
// the XML body already on the record, so acquisition has nothing left to
// do for them; articles without a readable abstract are dropped.
type ScienceDirectAdapter struct {
	cfg      types.ScoutConfig
	journals []string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewScienceDirectAdapter builds an adapter over the profile's journal
// list. A nil httpClient falls back to http.DefaultClient.
func NewScienceDirectAdapter(cfg types.ScoutConfig, profile types.Profile, httpClient *http.Client) *ScienceDirectAdapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ScienceDirectAdapter{
		cfg:      cfg,
		journals: profile.Journals,
		client:   httpClient,
		limiter:  newLimiter(cfg.RequestsPerSecond),
	}
}

// Name returns the adapter identifier.
func (a *ScienceDirectAdapter) Name() string { return "sciencedirect" }

// FetchCandidates searches each configured journal in turn (R3.2). A
// journal whose search fails is skipped; candidates from the remaining
// journals are still returned alongside the error.
func (a *ScienceDirectAdapter) FetchCandidates(ctx context.Context) ([]types.PaperRecord, error) {
	if a.cfg.ElsevierAPIKey == "" {
		return nil, fmt.Errorf("no Elsevier API key configured")
	}
	if len(a.journals) == 0 {
		return nil, fmt.Errorf("no journals configured for sciencedirect")
	}

	var records []types.PaperRecord
	var firstErr error
	for _, journal := range a.journals {
		recs, err := a.fetchJournal(ctx, journal)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("journal %q: %w", journal, err)
			}
			continue
		}
		records = append(records, recs...)
	}
	return records, firstErr
}

// fetchJournal searches one journal for the configured year and hydrates
// each hit with abstract and full text.
func (a *ScienceDirectAdapter) fetchJournal(ctx context.Context, journal string) ([]types.PaperRecord, error) {
	year := a.cfg.Year
	if year == 0 {
		year = time.Now().Year()
	}
	maxResults := a.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	query := fmt.Sprintf("SRCTITLE(%s) AND PUBYEAR IS %d", journal, year)
	reqURL := fmt.Sprintf("%s?query=%s&count=%d&sort=coverDate",
		sciencedirectSearchBase, url.QueryEscape(query), maxResults)

	body, err := a.get(ctx, reqURL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	var sr sdSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	var records []types.PaperRecord
	for _, entry := range sr.Results.Entries {
		rec, ok := a.buildRecord(ctx, entry)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// buildRecord hydrates one search hit. Hits without a DOI, readable
// abstract, or author list are dropped: they cannot pass triage or
// analysis anyway.
func (a *ScienceDirectAdapter) buildRecord(ctx context.Context, entry sdEntry) (types.PaperRecord, bool) {
	if entry.DOI == "" || entry.Identifier == "" {
		return types.PaperRecord{}, false
	}
	authors := entry.Authors.names()
	if len(authors) == 0 {
		return types.PaperRecord{}, false
	}

	abstract, fullText := a.fetchArticle(ctx, entry.DOI)
	if abstract == "" {
		return types.PaperRecord{}, false
	}

	pii := entry.Identifier
	if idx := strings.LastIndex(pii, ":"); idx >= 0 {
		pii = pii[idx+1:]
	}

	rec := types.PaperRecord{
		ID:              "sciencedirect:" + pii,
		Title:           entry.Title,
		Abstract:        abstract,
		Authors:         authors,
		URL:             entry.link(),
		Source:          "sciencedirect",
		DOI:             entry.DOI,
		FullTextContent: fullText,
	}
	if t, err := time.Parse("2006-01-02", entry.CoverDate); err == nil {
		rec.PublishedDate = t
	}
	// Inline full text makes acquisition a no-op for this record.
	if fullText != "" {
		rec.DownloadStatus = types.DownloadDone
	}
	return rec, true
}

// fetchArticle retrieves the abstract (JSON view) and full text (XML
// view) for one DOI. Either may be unavailable; a missing full text is
// normal for non-open-access articles.
func (a *ScienceDirectAdapter) fetchArticle(ctx context.Context, doi string) (abstract, fullText string) {
	base := fmt.Sprintf("%s/%s?view=FULL", sciencedirectArticleBase, url.PathEscape(doi))

	if body, err := a.get(ctx, base, "application/json"); err == nil {
		var ar sdArticleResponse
		if err := json.Unmarshal(body, &ar); err == nil {
			abstract = strings.TrimSpace(ar.Response.CoreData.Description)
		}
	}

	if body, err := a.get(ctx, base, "application/xml"); err == nil {
		fullText = string(body)
	}

	return abstract, fullText
}

// get performs one authenticated rate-limited GET and returns the body.
// Non-200 responses are errors.
func (a *ScienceDirectAdapter) get(ctx context.Context, reqURL, accept string) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-ELS-APIKey", a.cfg.ElsevierAPIKey)
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.client, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ScienceDirect search JSON structures.
type sdSearchResponse struct {
	Results sdSearchResults `json:"search-results"`
}

type sdSearchResults struct {
	Entries []sdEntry `json:"entry"`
}

type sdEntry struct {
	Identifier string       `json:"dc:identifier"`
	Title      string       `json:"dc:title"`
	DOI        string       `json:"prism:doi"`
	CoverDate  string       `json:"prism:coverDate"`
	Links      []sdLink     `json:"link"`
	Authors    sdAuthorList `json:"authors"`
}

// link picks the article page URL from the entry's link list.
func (e sdEntry) link() string {
	for _, l := range e.Links {
		if l.Ref == "scidir" {
			return l.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}

type sdLink struct {
	Ref  string `json:"@ref"`
	Href string `json:"@href"`
}

// sdAuthorList tolerates the API returning either a wrapped author array
// or a single author object.
type sdAuthorList struct {
	Author []sdAuthor
}

func (l *sdAuthorList) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Author json.RawMessage `json:"author"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if len(wrapped.Author) == 0 {
		return nil
	}

	var many []sdAuthor
	if err := json.Unmarshal(wrapped.Author, &many); err == nil {
		l.Author = many
		return nil
	}

	var one sdAuthor
	if err := json.Unmarshal(wrapped.Author, &one); err != nil {
		return err
	}
	l.Author = []sdAuthor{one}
	return nil
}

func (l sdAuthorList) names() []string {
	var names []string
	for _, a := range l.Author {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type sdAuthor struct {
	Name string `json:"$"`
}

// ScienceDirect article retrieval JSON structures (abstract view).
type sdArticleResponse struct {
	Response sdFullTextResponse `json:"full-text-retrieval-response"`
}

type sdFullTextResponse struct {
	CoreData sdCoreData `json:"coredata"`
}

type sdCoreData struct {
	Description string `json:"dc:description"`
}
