package agent

import (
	"context"
	"strings"
	"testing"

	"learnify-go/internal/streaming"

	"github.com/stretchr/testify/require"
)

func relayAll(t *testing.T, input string) ([]streaming.Envelope, bool, string) {
	t.Helper()
	out := make(chan streaming.Envelope, 64)
	terminal, answer, err := Relay(context.Background(), strings.NewReader(input), "s-1", out)
	require.NoError(t, err)
	close(out)
	var envs []streaming.Envelope
	for env := range out {
		envs = append(envs, env)
	}
	return envs, terminal, answer
}

func TestParseEvent(t *testing.T) {
	require.Equal(t, Event{Kind: KindText, Content: "Hi"}, ParseEvent(`{"type":"text","content":"Hi"}`))
	require.Equal(t, Event{Kind: KindContent, Content: "Yo"}, ParseEvent(`{"type":"content","text":"Yo"}`))
	require.Equal(t, Event{Kind: KindMermaid, Content: "graph TD"}, ParseEvent(` {"type":"mermaid_gen","content":"graph TD"} `))
	require.Equal(t, KindRaw, ParseEvent(`plain words`).Kind)
	require.Equal(t, KindRaw, ParseEvent(`{"type":3}`).Kind)
	require.Equal(t, KindRaw, ParseEvent(`{"type":"text"`).Kind)
	require.Equal(t, `{"url":"x"}`, ParseEvent(`{"type":"img_gen","content":{"url":"x"}}`).Content)
}

func TestRelayFlushesAtBoundaries(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"reasoning","content":"thinking hard"}`,
		`{"type":"text","content":"Recursion"}`,
		`{"type":"text","content":" is a function"}`,
		`{"type":"text","content":" calling itself. "}`,
		`{"type":"text","content":"Like"}`,
		`{"type":"text","content":" this"}`,
	}, "\n")

	envs, terminal, answer := relayAll(t, input)
	require.False(t, terminal)
	require.Equal(t, "Recursion is a function calling itself. Like this", answer)
	require.NotContains(t, answer, "thinking")

	var contents []string
	for _, env := range envs {
		require.Equal(t, streaming.TypeText, env.Type)
		require.Equal(t, "s-1", env.ID)
		contents = append(contents, env.Content)
	}
	// first chunk immediately, then at the sentence end, then the tail on EOF
	require.Equal(t, []string{"Recursion", " is a function calling itself. ", "Like this"}, contents)
}

func TestRelayLongAndParagraphFlush(t *testing.T) {
	long := strings.Repeat("x", 101)
	input := `{"type":"text","content":"a"}` + "\n" +
		`{"type":"text","content":"` + long + `"}` + "\n" +
		`{"type":"text","content":"para\n\nnext"}`
	envs, _, _ := relayAll(t, input)
	require.Len(t, envs, 3)
	require.Equal(t, long, envs[1].Content)
	require.Equal(t, "para\n\nnext", envs[2].Content)
}

func TestRelayDiagramAndImage(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"text","content":"See"}`,
		`{"type":"text","content":" below"}`,
		`{"type":"mermaid_gen","content":"graph TD\nA-->B"}`,
		`{"type":"img_gen","content":"https://img/x.png"}`,
	}, "\n")
	envs, _, _ := relayAll(t, input)
	require.Len(t, envs, 4)
	require.Equal(t, " below", envs[1].Content)
	require.Equal(t, streaming.TypeMermaid, envs[2].Type)
	require.Equal(t, "graph TD\nA-->B", envs[2].Content)
	require.Equal(t, streaming.TypeImage, envs[3].Type)
}

func TestRelayAgentErrorIsTerminal(t *testing.T) {
	input := `{"type":"text","content":"Hi"}` + "\n" +
		`{"type":"error","content":"Error: model down"}` + "\n" +
		`{"type":"text","content":"never"}`
	envs, terminal, _ := relayAll(t, input)
	require.True(t, terminal)
	require.Len(t, envs, 2)
	last := envs[len(envs)-1]
	require.Equal(t, streaming.TypeError, last.Type)
	require.True(t, last.Done)
	require.Equal(t, "Error: model down", last.Content)
}

func TestRelayRawLines(t *testing.T) {
	envs, _, answer := relayAll(t, "Loading model\n\n{\"type\":\"text\",\"content\":\"ok\"}")
	require.Equal(t, "Loading model\nok", answer)
	require.Equal(t, "Loading model\n", envs[0].Content)
}

func TestRelayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan streaming.Envelope)
	_, _, err := Relay(ctx, strings.NewReader(`{"type":"text","content":"Hi"}`), "s", out)
	require.ErrorIs(t, err, context.Canceled)
}
