package agent

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the type tag of one agent event line.
type Kind string

const (
	KindText      Kind = "text"
	KindContent   Kind = "content"
	KindReasoning Kind = "reasoning"
	KindMermaid   Kind = "mermaid_gen"
	KindImage     Kind = "img_gen"
	KindError     Kind = "error"
	// KindRaw marks a line that was not a JSON event.
	KindRaw Kind = "raw"
)

// Event is one parsed line of agent output.
type Event struct {
	Kind    Kind
	Content string
}

// ParseEvent decodes a line such as {"type":"text","content":"Hi"}. Lines
// that are not JSON objects with a string type come back as KindRaw.
func ParseEvent(line string) Event {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return Event{Kind: KindRaw, Content: line}
	}
	res := gjson.Parse(trimmed)
	typ := res.Get("type")
	if typ.Type != gjson.String {
		return Event{Kind: KindRaw, Content: line}
	}
	content := res.Get("content")
	if !content.Exists() {
		content = res.Get("text")
	}
	text := content.String()
	if content.IsObject() || content.IsArray() {
		text = content.Raw
	}
	return Event{Kind: Kind(typ.String()), Content: text}
}

// IsText reports events whose content joins the running answer.
func (e Event) IsText() bool {
	return e.Kind == KindText || e.Kind == KindContent || e.Kind == KindRaw
}
