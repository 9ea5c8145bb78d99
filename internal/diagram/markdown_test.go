package diagram

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepairMarkdownOnlyTouchesMermaidFences(t *testing.T) {
	in := "# Flow\n\nText A[keep (this)]\n\n```mermaid\ngraph TD\nA[Cost (x2)] -- > B\n```\n\n```js\nconst a = x[i (j)];\n```\n"
	want := "# Flow\n\nText A[keep (this)]\n\n```mermaid\ngraph TD\nA[\"Cost (x2)\"] --> B\n```\n\n```js\nconst a = x[i (j)];\n```\n"
	require.Equal(t, want, RepairMarkdown(in))
}

func TestRepairMarkdownNoFences(t *testing.T) {
	in := "plain text with A[b (c)]"
	require.Equal(t, in, RepairMarkdown(in))
}

func TestMermaidBlocks(t *testing.T) {
	in := "```mermaid\ngraph TD\nA --> B\n```\ntext\n``` Mermaid\nsequenceDiagram\n```\n```go\nx\n```"
	require.Equal(t, []string{"graph TD\nA --> B", "sequenceDiagram"}, MermaidBlocks(in))
}
