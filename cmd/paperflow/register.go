// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperflow/internal/container"
	"github.com/pdiddy/paperflow/internal/convert"
	"github.com/pdiddy/paperflow/internal/fetch"
	"github.com/pdiddy/paperflow/internal/llm"
	"github.com/pdiddy/paperflow/internal/review"
	"github.com/pdiddy/paperflow/internal/store"
)

var registerCmd = &cobra.Command{
	Use:   "register <pdf-file>",
	Short: "Add a local PDF to the pipeline",
	Long: `Register converts a local PDF, extracts its bibliographic metadata with
the language model, copies the file into content storage, and stores the
record pre-marked relevant and downloaded. The next analyze run picks it up.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	pdfPath := args[0]

	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}
	converter, err := convert.NewMarkitdownConverter(rt)
	if err != nil {
		return err
	}

	fmt.Printf("converting %s\n", pdfPath)
	text, err := converter.ToText(pdfPath)
	if err != nil {
		return err
	}

	base := filepath.Base(pdfPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	backend := llm.NewClient(cfg.Analysis.AIConfig, nil)
	rec, err := review.ExtractMetadata(cmd.Context(), backend, text, name)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := copyArtifact(pdfPath, fetch.ArtifactPath(cfg.Acquisition.PapersDir, rec.ID)); err != nil {
		return err
	}

	if err := st.Insert(cmd.Context(), &rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("paper %s is already registered", rec.ID)
		}
		return err
	}

	fmt.Printf("registered %s (%s)\n", rec.ID, rec.Title)
	return nil
}

// copyArtifact places the PDF at the canonical content path so the
// analyze phase treats the record as downloaded.
func copyArtifact(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating papers directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying artifact: %w", err)
	}
	return out.Close()
}
