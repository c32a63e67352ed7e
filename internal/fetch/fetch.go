// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch acquires full-document artifacts for relevant papers.
// Implements: prd003-acquisition (R1-R4);
//
//	docs/ARCHITECTURE.md § Acquisition.
//
// Per record the service is a two-outcome state machine: pending papers
// end as downloaded or failed, downloaded is terminal, failed is retried
// on the next run. An artifact already present at the canonical content
// path short-circuits to downloaded without a network call.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Outcome is the acquisition result exposed to the orchestrator. Exactly
// two values exist; no partial or streaming states.
type Outcome = types.DownloadStatus

const (
	OutcomeDownloaded = types.DownloadDone
	OutcomeFailed     = types.DownloadFailed
)

// pdfMagic is the signature every accepted artifact must start with.
var pdfMagic = []byte("%PDF")

// Strategy fetches one document from url into destPath. Named variants:
// direct HTTP fetch for open sources, session-based fetch for sources
// behind authenticated or scripted download paths.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, url, destPath string) error
}

// Service routes acquisition requests to a strategy, validates the
// artifact, and reports the outcome.
type Service struct {
	papersDir string
	direct    Strategy
	session   Strategy
	limiter   *rate.Limiter
	w         io.Writer
}

// NewService builds the acquisition service. session may be nil when no
// session-based strategy is configured; papers routed to it then fail.
func NewService(cfg types.AcquisitionConfig, direct, session Strategy, w io.Writer) *Service {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Service{
		papersDir: cfg.PapersDir,
		direct:    direct,
		session:   session,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		w:         w,
	}
}

// ArtifactPath returns the canonical content path for a record id:
// papersDir plus the id with colons replaced by underscores, as ".pdf".
func ArtifactPath(papersDir, id string) string {
	return filepath.Join(papersDir, strings.ReplaceAll(id, ":", "_")+".pdf")
}

// Acquire retrieves the full document for one record and returns exactly
// one of downloaded or failed. An existing artifact short-circuits to
// downloaded. A fetched artifact that fails PDF validation is deleted so
// login and captcha pages never poison content storage.
func (s *Service) Acquire(ctx context.Context, id, url, source string) Outcome {
	destPath := ArtifactPath(s.papersDir, id)

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(s.w, "cached:     %s\n", id)
		return OutcomeDownloaded
	}

	if err := os.MkdirAll(s.papersDir, 0o755); err != nil {
		fmt.Fprintf(s.w, "failed:     %s (%v)\n", id, err)
		return OutcomeFailed
	}

	strategy := s.route(source)
	if strategy == nil {
		fmt.Fprintf(s.w, "failed:     %s (no session strategy configured for source %q)\n", id, source)
		return OutcomeFailed
	}

	if err := s.limiter.Wait(ctx); err != nil {
		fmt.Fprintf(s.w, "failed:     %s (%v)\n", id, err)
		return OutcomeFailed
	}

	fmt.Fprintf(s.w, "fetching:   %s (%s)\n", id, strategy.Name())

	if err := strategy.Fetch(ctx, url, destPath); err != nil {
		os.Remove(destPath)
		fmt.Fprintf(s.w, "failed:     %s (%v)\n", id, err)
		return OutcomeFailed
	}

	if err := validatePDF(destPath); err != nil {
		os.Remove(destPath)
		fmt.Fprintf(s.w, "failed:     %s (%v)\n", id, err)
		return OutcomeFailed
	}

	fmt.Fprintf(s.w, "downloaded: %s\n", id)
	return OutcomeDownloaded
}

// route selects the fetch strategy for a source. Open preprint servers
// allow a plain HTTP fetch; everything else needs the session strategy.
func (s *Service) route(source string) Strategy {
	if strings.HasPrefix(strings.ToLower(source), "arxiv") {
		return s.direct
	}
	return s.session
}

// validatePDF checks the artifact's content signature. An HTML login page
// saved as .pdf fails here rather than downstream in the analysis stage.
func validatePDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("artifact too short to be a PDF")
	}
	if !bytes.Equal(header, pdfMagic) {
		return fmt.Errorf("artifact is not a PDF (signature %q)", header)
	}
	return nil
}
