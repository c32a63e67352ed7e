// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paperflow/internal/httputil"
	"github.com/pdiddy/paperflow/pkg/types"
)

// DirectStrategy downloads a document over plain HTTP. Used for open
// sources where the PDF URL is derivable from the abstract URL.
type DirectStrategy struct {
	Client *http.Client
	Config types.HTTPConfig
}

// Name returns the strategy identifier.
func (d *DirectStrategy) Name() string { return "direct" }

// Fetch downloads the document to destPath via a temporary file, renamed
// on success so a crash never leaves a truncated artifact at the
// canonical path.
func (d *DirectStrategy) Fetch(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, DocumentURL(url), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", d.Config.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, d.Client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return writeViaTemp(destPath, resp.Body)
}

// DocumentURL rewrites an arXiv abstract URL to its PDF counterpart.
// Non-abstract URLs pass through unchanged.
func DocumentURL(url string) string {
	if strings.Contains(url, "/abs/") {
		return strings.Replace(url, "/abs/", "/pdf/", 1) + ".pdf"
	}
	return url
}

// writeViaTemp streams r into destPath through a temp file in the same
// directory, renaming atomically on success.
func writeViaTemp(destPath string, r io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
