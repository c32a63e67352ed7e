// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperflow/internal/llm"
	"github.com/pdiddy/paperflow/internal/review"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Generate an analysis prompt template from the research profile",
	Long: `Prompt asks the language model to draft an analysis prompt template
tailored to the configured research interests. Save the output to a file and
point profile.analysis_prompt_file at it to replace the built-in template.`,
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringP("output", "o", "", "write the template to a file instead of stdout")

	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if len(cfg.Profile.Interests) == 0 {
		return fmt.Errorf("no research interests configured; set profile.interests in the config file")
	}

	backend := llm.NewClient(cfg.Analysis.AIConfig, nil)
	template, err := review.GeneratePromptTemplate(cmd.Context(), backend, cfg.Profile)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Print(template)
		return nil
	}

	if err := os.WriteFile(output, []byte(template), 0o644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	fmt.Printf("wrote analysis prompt template to %s\n", output)
	return nil
}
