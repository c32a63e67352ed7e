// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/pdiddy/paperflow/internal/llm"
	"github.com/pdiddy/paperflow/pkg/types"
)

// generationPromptTmpl asks the model to draft an analysis prompt
// tailored to the profile's interest statements.
var generationPromptTmpl = template.Must(template.New("promptgen").Parse(`You are an expert in creating professional academic analysis prompts.

Based on the following research interests, create a comprehensive and professional prompt template for analyzing academic papers. The user is a PhD student focusing on these fields.

Research fields of interest:
{{.Interests}}

The prompt template must:
1. Clearly define the analysis objectives
2. Stay generic enough to cover interests from different areas
3. Specify which aspects of a paper should be evaluated
4. Request structured output in Markdown
5. Emphasize relevance checking against the research fields
6. Ask for key takeaways and potential applications

Format your response as a clear, standalone prompt that can be used directly. Do not reply with anything besides the prompt itself.
`))

// GeneratePromptTemplate asks the model to write an analysis prompt from
// the profile's interests. The result is suitable for saving to a file
// and wiring in via the profile's analysis prompt setting.
func GeneratePromptTemplate(ctx context.Context, backend llm.Backend, profile types.Profile) (string, error) {
	var buf bytes.Buffer
	err := generationPromptTmpl.Execute(&buf, struct{ Interests string }{profile.InterestStatement()})
	if err != nil {
		return "", fmt.Errorf("rendering generation prompt: %w", err)
	}

	out, err := backend.Complete(ctx, "", buf.String())
	if err != nil {
		return "", fmt.Errorf("generating analysis prompt: %w", err)
	}

	// Models sometimes omit the output-format instruction; pin it.
	return out + "\n\nPlease provide your analysis in Markdown format.\n", nil
}
