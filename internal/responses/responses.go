// Package responses holds the canned markdown answers used by the demo
// stream routes in place of a real model.
package responses

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templateFS embed.FS

var (
	markdownDemo   = mustRead("templates/markdown_demo.md")
	codeExample    = mustRead("templates/code_example.md")
	diagramExample = mustRead("templates/diagram_example.md")
	generalAnswer  = template.Must(template.ParseFS(templateFS, "templates/general_answer.md"))
)

// Kind names the template chosen for a question.
type Kind string

const (
	KindCode    Kind = "code"
	KindDiagram Kind = "diagram"
	KindGeneral Kind = "general"
)

func mustRead(name string) string {
	b, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return strings.TrimRight(string(b), "\n")
}

// MarkdownDemo returns the document streamed by the markdown demo route.
func MarkdownDemo() string { return markdownDemo }

// Classify picks the template for a user message.
func Classify(message string) Kind {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "code") || strings.Contains(m, "example"):
		return KindCode
	case strings.Contains(m, "diagram") || strings.Contains(m, "mermaid"):
		return KindDiagram
	default:
		return KindGeneral
	}
}

// ForMessage renders the canned answer for message.
func ForMessage(message string) (string, error) {
	switch Classify(message) {
	case KindCode:
		return codeExample, nil
	case KindDiagram:
		return diagramExample, nil
	}
	var sb strings.Builder
	if err := generalAnswer.Execute(&sb, struct{ Question string }{message}); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
