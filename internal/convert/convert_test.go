// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRuntime implements container.Runtime for tests.
type fakeRuntime struct {
	imageErr error
	runFunc  func(image string, args []string, stdin io.Reader, stdout io.Writer) error
}

func (f *fakeRuntime) Name() string                   { return "fake" }
func (f *fakeRuntime) Available() bool                { return true }
func (f *fakeRuntime) ImageExists(image string) error { return f.imageErr }
func (f *fakeRuntime) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	return f.runFunc(image, args, stdin, stdout)
}

func writePDF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewMarkitdownConverterMissingImage(t *testing.T) {
	rt := &fakeRuntime{imageErr: errors.New("image not found")}
	if _, err := NewMarkitdownConverter(rt); err == nil {
		t.Fatal("expected error when the image is missing")
	}
}

func TestToTextPipesPDFThroughContainer(t *testing.T) {
	rt := &fakeRuntime{
		runFunc: func(image string, _ []string, stdin io.Reader, stdout io.Writer) error {
			if image != imageMarkitdown {
				return errors.New("wrong image " + image)
			}
			data, _ := io.ReadAll(stdin)
			_, _ = stdout.Write([]byte("# Converted\n" + string(data)))
			return nil
		},
	}
	conv, err := NewMarkitdownConverter(rt)
	if err != nil {
		t.Fatal(err)
	}

	path := writePDF(t, "%PDF body")
	text, err := conv.ToText(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(text, "# Converted") || !strings.Contains(text, "%PDF body") {
		t.Errorf("unexpected conversion output %q", text)
	}
}

func TestToTextEmptyOutput(t *testing.T) {
	rt := &fakeRuntime{
		runFunc: func(string, []string, io.Reader, io.Writer) error { return nil },
	}
	conv, err := NewMarkitdownConverter(rt)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := conv.ToText(writePDF(t, "%PDF")); err == nil {
		t.Fatal("expected error for empty converter output")
	}
}

func TestToTextMissingFile(t *testing.T) {
	rt := &fakeRuntime{
		runFunc: func(string, []string, io.Reader, io.Writer) error { return nil },
	}
	conv, err := NewMarkitdownConverter(rt)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := conv.ToText(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing PDF")
	}
}
