package chunking

import (
	"math"
	"strings"
)

// codeChunkRatio sizes code block interior pieces relative to the target.
const codeChunkRatio = 0.8

// builder accumulates chunks while keeping the output lossless: a piece that
// is only whitespace is never emitted on its own but carried into the next
// chunk (or appended to the last one when nothing follows).
type builder struct {
	chunks  []string
	pending strings.Builder
	carry   string
	target  int
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func (b *builder) emit(s string) {
	if s == "" {
		return
	}
	s = b.carry + s
	b.carry = ""
	if isBlank(s) {
		b.carry = s
		return
	}
	b.chunks = append(b.chunks, s)
}

// emitFence pushes a fence line as its own chunk. Carried whitespace goes
// to the previous chunk so the fence stays exact; with no previous chunk it
// leads the stream as a chunk of its own.
func (b *builder) emitFence(s string) {
	if b.carry != "" {
		if n := len(b.chunks); n > 0 {
			b.chunks[n-1] += b.carry
		} else {
			b.chunks = append(b.chunks, b.carry)
		}
		b.carry = ""
	}
	b.chunks = append(b.chunks, s)
}

func (b *builder) flushPending() {
	if b.pending.Len() == 0 {
		return
	}
	s := b.pending.String()
	b.pending.Reset()
	b.emit(s)
}

func (b *builder) emitSplit(s string, size int) {
	if size < 1 {
		size = 1
	}
	for _, piece := range SplitText(s, ceilDiv(RuneLen(s), size)) {
		b.emit(piece)
	}
}

func (b *builder) plain(run string) {
	if run == "" {
		return
	}
	if RuneLen(run) > b.target {
		b.flushPending()
		b.emitSplit(run, b.target)
		return
	}
	b.pending.WriteString(run)
	if RuneLen(b.pending.String()) >= b.target {
		b.flushPending()
	}
}

func (b *builder) codeBlock(content string) {
	lines := strings.SplitAfter(content, "\n")
	b.flushPending()
	b.emitFence(lines[0])
	interior := strings.Join(lines[1:len(lines)-1], "")
	if interior != "" {
		size := int(math.Ceil(float64(b.target) * codeChunkRatio))
		b.emitSplit(interior, size)
	}
	b.emitFence(lines[len(lines)-1])
}

func (b *builder) lineByLine(content string) {
	lines := strings.SplitAfter(content, "\n")
	b.pending.WriteString(lines[0])
	b.flushPending()
	for _, l := range lines[1:] {
		b.emit(l)
	}
}

func (b *builder) block(content string) {
	if RuneLen(content) > b.target {
		b.flushPending()
		b.emitSplit(content, b.target)
		return
	}
	b.pending.WriteString(content)
	b.flushPending()
}

func (b *builder) finish() []string {
	b.flushPending()
	if b.carry != "" {
		if n := len(b.chunks); n > 0 {
			b.chunks[n-1] += b.carry
		} else {
			b.chunks = append(b.chunks, b.carry)
		}
		b.carry = ""
	}
	return b.chunks
}

// SplitMarkdown partitions markdown into roughly targetChunks chunks whose
// boundaries follow the document structure: fences travel on their own,
// header and list lines one per chunk, and plain prose is sized to the
// target length. Joining the result always reproduces markdown.
func SplitMarkdown(markdown string, targetChunks int) []string {
	if markdown == "" {
		return nil
	}
	if targetChunks < 1 {
		targetChunks = 1
	}
	regions := ScanRegions(markdown)
	b := &builder{target: ceilDiv(RuneLen(markdown), targetChunks)}
	if len(regions) == 0 {
		for _, piece := range SplitText(markdown, targetChunks) {
			b.emit(piece)
		}
		return b.finish()
	}

	last := 0
	for _, r := range regions {
		b.plain(markdown[last:r.Start])
		content := r.Text(markdown)
		switch r.Kind {
		case KindCodeBlock:
			b.codeBlock(content)
		case KindHeader, KindList, KindNumberedList:
			b.lineByLine(content)
		default:
			b.block(content)
		}
		last = r.End
	}
	b.plain(markdown[last:])
	return b.finish()
}
