// Package latex renders LaTeX snippets to PNG by shelling out to pdflatex
// and ImageMagick. Both binaries must be on PATH.
package latex

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const preamble = `\documentclass[preview,border=2pt]{standalone}` +
	`\usepackage[utf8]{inputenc}` +
	`\usepackage{amsmath, amssymb, enumerate}`

// Render compiles the snippet and returns PNG bytes. All intermediate files
// live in a per-call temp dir that is always removed.
func Render(ctx context.Context, source string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "latex-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	texPath := filepath.Join(dir, "snippet.tex")
	if err := os.WriteFile(texPath, []byte(wrapDocument(source)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write tex file: %w", err)
	}

	// -interaction=nonstopmode prevents pdflatex from hanging on errors.
	cmd := exec.CommandContext(ctx, "pdflatex", "-interaction=nonstopmode", "-output-directory", dir, texPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdflatex failed: %w: %s", err, tail(out, 400))
	}

	pdfPath := filepath.Join(dir, "snippet.pdf")
	pngPath := filepath.Join(dir, "snippet.png")

	// density 600 for readable math at Slack's preview sizes.
	cmd = exec.CommandContext(ctx, "magick", "-density", "600", pdfPath, "-alpha", "remove", pngPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("magick failed: %w: %s", err, tail(out, 400))
	}

	png, err := os.ReadFile(pngPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered image: %w", err)
	}

	return png, nil
}

func wrapDocument(content string) string {
	return preamble + `\begin{document}` + content + `\end{document}`
}

func tail(out []byte, n int) []byte {
	if len(out) <= n {
		return out
	}
	return out[len(out)-n:]
}
