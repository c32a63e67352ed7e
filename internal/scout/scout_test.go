// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/paperflow/pkg/types"
)

// --- extractArxivID ---

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"versioned", "http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"higher version", "http://arxiv.org/abs/2301.07041v12", "2301.07041"},
		{"unversioned", "http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"no abs segment", "http://arxiv.org/pdf/2301.07041", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractArxivID(tt.url); got != tt.want {
				t.Errorf("extractArxivID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// --- ArxivAdapter ---

const sampleArxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.12345v2</id>
    <title>Graph Networks for
      Tunnel Settlement</title>
    <summary>We predict settlement
with graphs.</summary>
    <published>2024-01-20T10:00:00Z</published>
    <author><name>A. Author</name></author>
    <author><name>B. Author</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.99999v1</id>
    <title>Second Paper</title>
    <summary>Another abstract.</summary>
    <published>2024-01-19T09:00:00Z</published>
    <author><name>C. Author</name></author>
  </entry>
</feed>`

func arxivConfig() types.ScoutConfig {
	return types.ScoutConfig{ArxivQuery: "cat:cs.CE OR cat:cs.AI", MaxResults: 10, RequestsPerSecond: 1000}
}

func TestArxivFetchCandidates(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(sampleArxivFeed))
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = orig }()

	a := NewArxivAdapter(arxivConfig(), ts.Client())
	recs, err := a.FetchCandidates(context.Background())
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if gotQuery != "cat:cs.CE OR cat:cs.AI" {
		t.Errorf("search_query = %q", gotQuery)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	r := recs[0]
	if r.ID != "arxiv:2401.12345" {
		t.Errorf("ID = %q", r.ID)
	}
	if r.Source != "arxiv" {
		t.Errorf("Source = %q", r.Source)
	}
	if strings.Contains(r.Abstract, "\n") {
		t.Errorf("abstract not flattened: %q", r.Abstract)
	}
	if r.URL != "http://arxiv.org/abs/2401.12345v2" {
		t.Errorf("URL = %q", r.URL)
	}
	if r.IsOA == nil || !*r.IsOA {
		t.Error("arXiv records must be marked open access")
	}
	if len(r.Authors) != 2 || r.Authors[0] != "A. Author" {
		t.Errorf("Authors = %v", r.Authors)
	}
	if r.PublishedDate.Year() != 2024 {
		t.Errorf("PublishedDate = %v", r.PublishedDate)
	}
	if r.DownloadStatus != "" {
		t.Errorf("DownloadStatus = %q, want unset at discovery", r.DownloadStatus)
	}
}

func TestArxivFetchCandidatesHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = orig }()

	a := NewArxivAdapter(arxivConfig(), ts.Client())
	if _, err := a.FetchCandidates(context.Background()); err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}

func TestArxivFetchCandidatesEmptyQuery(t *testing.T) {
	a := NewArxivAdapter(types.ScoutConfig{}, nil)
	if _, err := a.FetchCandidates(context.Background()); err == nil {
		t.Fatal("expected error for empty query")
	}
}

// --- ScienceDirectAdapter ---

const sampleSDSearch = `{
  "search-results": {
    "entry": [
      {
        "dc:identifier": "PII:S0926580524000001",
        "dc:title": "Automated Crack Detection",
        "prism:doi": "10.1016/j.autcon.2024.000001",
        "prism:coverDate": "2024-03-01",
        "link": [
          {"@ref": "self", "@href": "https://api.elsevier.com/content/article/pii/S0926580524000001"},
          {"@ref": "scidir", "@href": "https://www.sciencedirect.com/science/article/pii/S0926580524000001"}
        ],
        "authors": {"author": [{"$": "D. Author"}, {"$": "E. Author"}]}
      },
      {
        "dc:identifier": "PII:S0926580524000002",
        "dc:title": "Paywalled Paper",
        "prism:doi": "10.1016/j.autcon.2024.000002",
        "prism:coverDate": "2024-02-01",
        "link": [],
        "authors": {"author": {"$": "F. Author"}}
      }
    ]
  }
}`

const sampleSDArticle = `{
  "full-text-retrieval-response": {
    "coredata": {"dc:description": " We detect cracks automatically. "}
  }
}`

func sciencedirectTestServers(t *testing.T) (search, article *httptest.Server) {
	t.Helper()

	article = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-ELS-APIKey") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		// Second DOI has no readable abstract or full text.
		if strings.Contains(r.URL.Path, "000002") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.Header.Get("Accept") {
		case "application/json":
			w.Write([]byte(sampleSDArticle))
		default:
			w.Write([]byte(`<article>full body</article>`))
		}
	}))
	t.Cleanup(article.Close)

	search = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleSDSearch))
	}))
	t.Cleanup(search.Close)

	return search, article
}

func TestScienceDirectFetchCandidates(t *testing.T) {
	search, article := sciencedirectTestServers(t)

	origSearch, origArticle := sciencedirectSearchBase, sciencedirectArticleBase
	sciencedirectSearchBase = search.URL
	sciencedirectArticleBase = article.URL
	defer func() {
		sciencedirectSearchBase = origSearch
		sciencedirectArticleBase = origArticle
	}()

	cfg := types.ScoutConfig{MaxResults: 5, Year: 2024, ElsevierAPIKey: "key", RequestsPerSecond: 1000}
	profile := types.Profile{Journals: []string{"Automation in Construction"}}

	a := NewScienceDirectAdapter(cfg, profile, search.Client())
	recs, err := a.FetchCandidates(context.Background())
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1 (no-abstract hit dropped)", len(recs))
	}

	r := recs[0]
	if r.ID != "sciencedirect:S0926580524000001" {
		t.Errorf("ID = %q", r.ID)
	}
	if r.Source != "sciencedirect" {
		t.Errorf("Source = %q", r.Source)
	}
	if r.Abstract != "We detect cracks automatically." {
		t.Errorf("Abstract = %q", r.Abstract)
	}
	if r.FullTextContent != `<article>full body</article>` {
		t.Errorf("FullTextContent = %q", r.FullTextContent)
	}
	if r.DownloadStatus != types.DownloadDone {
		t.Errorf("DownloadStatus = %q, want %q for inline full text", r.DownloadStatus, types.DownloadDone)
	}
	if r.URL != "https://www.sciencedirect.com/science/article/pii/S0926580524000001" {
		t.Errorf("URL = %q", r.URL)
	}
	if r.DOI != "10.1016/j.autcon.2024.000001" {
		t.Errorf("DOI = %q", r.DOI)
	}
	if len(r.Authors) != 2 {
		t.Errorf("Authors = %v", r.Authors)
	}
}

func TestScienceDirectRequiresKeyAndJournals(t *testing.T) {
	a := NewScienceDirectAdapter(types.ScoutConfig{}, types.Profile{Journals: []string{"J"}}, nil)
	if _, err := a.FetchCandidates(context.Background()); err == nil {
		t.Error("expected error without API key")
	}

	a = NewScienceDirectAdapter(types.ScoutConfig{ElsevierAPIKey: "key"}, types.Profile{}, nil)
	if _, err := a.FetchCandidates(context.Background()); err == nil {
		t.Error("expected error without journals")
	}
}

func TestSDAuthorListSingleObject(t *testing.T) {
	var l sdAuthorList
	if err := l.UnmarshalJSON([]byte(`{"author": {"$": "Solo Author"}}`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	names := l.names()
	if len(names) != 1 || names[0] != "Solo Author" {
		t.Errorf("names = %v", names)
	}
}
