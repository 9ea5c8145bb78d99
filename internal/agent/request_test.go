package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestRequestEncodeDefaults(t *testing.T) {
	raw, err := Request{Prompt: "What is a stack?", SessionID: "sess-1", CourseID: "CS101"}.Encode()
	require.NoError(t, err)

	doc := gjson.ParseBytes(raw)
	require.Equal(t, "What is a stack?", doc.Get("prompt").String())
	require.Equal(t, "english", doc.Get("language").String())
	require.Equal(t, "CS101", doc.Get("courseId").String())
	require.Equal(t, "sess-1", doc.Get("session_id").String())
	require.Equal(t, "conceptual", doc.Get("learningProfile.style").String())
	require.Equal(t, "beginner", doc.Get("learningProfile.depth").String())
	require.Equal(t, "examples", doc.Get("learningProfile.interaction").String())
	require.False(t, doc.Get("userId").Exists())
	require.False(t, doc.Get("chapterId").Exists())
}

func TestRequestEncodeProfile(t *testing.T) {
	raw, err := Request{
		Prompt:    `say "hi"`,
		Language:  "french",
		ChapterID: "ch-2",
		Profile:   &LearningProfile{Style: "practical", Depth: "advanced", Interaction: "quiz"},
	}.Encode()
	require.NoError(t, err)

	doc := gjson.ParseBytes(raw)
	require.Equal(t, `say "hi"`, doc.Get("prompt").String())
	require.Equal(t, "french", doc.Get("language").String())
	require.Equal(t, "ch-2", doc.Get("chapterId").String())
	require.Equal(t, "advanced", doc.Get("learningProfile.depth").String())
}
