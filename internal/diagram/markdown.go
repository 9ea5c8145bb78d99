package diagram

import (
	"strings"

	"learnify-go/internal/chunking"
)

// RepairMarkdown applies pass 1 to the body of every ```mermaid fence in
// text. Everything outside those fences is returned untouched.
func RepairMarkdown(text string) string {
	regions := chunking.ScanRegions(text)
	if len(regions) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, r := range regions {
		if r.Kind != chunking.KindCodeBlock {
			continue
		}
		block := r.Text(text)
		open, rest, ok := strings.Cut(block, "\n")
		if !ok || !isMermaidFence(open) {
			continue
		}
		idx := strings.LastIndex(rest, "\n")
		if idx < 0 {
			continue
		}
		body, closing := rest[:idx], rest[idx:]
		b.WriteString(text[last:r.Start])
		b.WriteString(open)
		b.WriteString("\n")
		b.WriteString(Pass1(body))
		b.WriteString(closing)
		last = r.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// MermaidBlocks returns the bodies of all ```mermaid fences in text.
func MermaidBlocks(text string) []string {
	var out []string
	for _, r := range chunking.ScanRegions(text) {
		if r.Kind != chunking.KindCodeBlock {
			continue
		}
		open, rest, ok := strings.Cut(r.Text(text), "\n")
		if !ok || !isMermaidFence(open) {
			continue
		}
		if idx := strings.LastIndex(rest, "\n"); idx >= 0 {
			out = append(out, rest[:idx])
		}
	}
	return out
}

func isMermaidFence(line string) bool {
	lang := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "`"))
	return strings.EqualFold(lang, "mermaid")
}
