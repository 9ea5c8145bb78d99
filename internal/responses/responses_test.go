package responses

import (
	"strings"
	"testing"

	"learnify-go/internal/chunking"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	require.Equal(t, KindCode, Classify("Show me a CODE sample"))
	require.Equal(t, KindCode, Classify("an example diagram please"))
	require.Equal(t, KindDiagram, Classify("draw a Mermaid chart"))
	require.Equal(t, KindGeneral, Classify("what is recursion?"))
}

func TestForMessageEchoesQuestion(t *testing.T) {
	out, err := ForMessage(`what is {{.Question}} & "x"?`)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "# Response to your question"))
	require.Contains(t, out, `Thank you for asking about "what is {{.Question}} & "x"?".`)
	require.False(t, strings.HasSuffix(out, "\n"))
}

func TestTemplatesHaveStructure(t *testing.T) {
	demo := MarkdownDemo()
	require.True(t, strings.HasPrefix(demo, "# Markdown Demo"))

	kinds := map[chunking.Kind]bool{}
	for _, r := range chunking.ScanRegions(demo) {
		kinds[r.Kind] = true
	}
	for _, k := range []chunking.Kind{
		chunking.KindHeader, chunking.KindCodeBlock, chunking.KindList,
		chunking.KindNumberedList, chunking.KindTable, chunking.KindBlockquote,
	} {
		require.True(t, kinds[k], "demo document lacks %s", k)
	}

	diagram, err := ForMessage("diagram")
	require.NoError(t, err)
	require.Contains(t, diagram, "```mermaid\ngraph TD")

	code, err := ForMessage("code")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(code, "```jsx"))
}
