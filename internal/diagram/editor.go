package diagram

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/klauspost/compress/zlib"
)

const editorBaseURL = "https://mermaid.live/edit#pako:"

type editorState struct {
	Code          string `json:"code"`
	Mermaid       string `json:"mermaid"`
	AutoSync      bool   `json:"autoSync"`
	UpdateDiagram bool   `json:"updateDiagram"`
}

// EditorURL returns a mermaid.live link that opens source for manual editing.
func EditorURL(source string) string {
	state, err := json.Marshal(editorState{
		Code:          source,
		Mermaid:       `{"theme":"default"}`,
		AutoSync:      true,
		UpdateDiagram: true,
	})
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return ""
	}
	if _, err := zw.Write(state); err != nil {
		return ""
	}
	if err := zw.Close(); err != nil {
		return ""
	}
	return editorBaseURL + base64.RawURLEncoding.EncodeToString(buf.Bytes())
}
