// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdiddy/paperflow/internal/container"
)

// SessionStrategy fetches documents that sit behind authenticated or
// scripted download paths by driving a headless-browser container image.
// The container receives the URL as its argument and writes the document
// bytes to stdout.
type SessionStrategy struct {
	runtime container.Runtime
	image   string
}

// NewSessionStrategy verifies the session image exists in the container
// runtime before returning the strategy.
func NewSessionStrategy(rt container.Runtime, image string) (*SessionStrategy, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("session fetch image not available in %s: %w", rt.Name(), err)
	}
	return &SessionStrategy{runtime: rt, image: image}, nil
}

// Name returns the strategy identifier.
func (s *SessionStrategy) Name() string { return "session" }

// Fetch runs the browser container for one URL and stores its stdout as
// the artifact. The caller validates the content signature afterwards.
func (s *SessionStrategy) Fetch(ctx context.Context, url, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := s.runtime.Run(s.image, []string{url}, nil, &out); err != nil {
		return fmt.Errorf("session fetch of %s: %w", url, err)
	}
	if out.Len() == 0 {
		return fmt.Errorf("session fetch of %s produced no output", url)
	}

	return writeViaTemp(destPath, &out)
}
