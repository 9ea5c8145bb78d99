package chunking

import (
	"regexp"
	"strings"
)

// Kind identifies the markdown construct a Region covers.
type Kind string

const (
	KindCodeBlock    Kind = "codeblock"
	KindHeader       Kind = "header"
	KindList         Kind = "list"
	KindNumberedList Kind = "numbered-list"
	KindBlockquote   Kind = "blockquote"
	KindTable        Kind = "table"
)

// Region is a span of the source text recognised as one markdown construct.
// Start and End are byte offsets; End excludes the newline ending the last line.
type Region struct {
	Kind  Kind
	Start int
	End   int
}

// Text returns the region's slice of src.
func (r Region) Text(src string) string { return src[r.Start:r.End] }

var (
	headerLine   = regexp.MustCompile(`^#{1,6}(\s|$)`)
	bulletLine   = regexp.MustCompile(`^\s*[-*+]\s`)
	numberedLine = regexp.MustCompile(`^\s*\d+\.\s`)
	quoteLine    = regexp.MustCompile(`^\s{0,3}>`)
	tableRule    = regexp.MustCompile(`^\s*\|[\s:|-]*-[\s:|-]*$`)
)

type line struct {
	start int // byte offset of the first character
	end   int // byte offset of the newline, or len(src)
	text  string
}

func splitLines(src string) []line {
	var out []line
	pos := 0
	for pos < len(src) {
		nl := strings.IndexByte(src[pos:], '\n')
		end := len(src)
		if nl >= 0 {
			end = pos + nl
		}
		out = append(out, line{start: pos, end: end, text: src[pos:end]})
		if nl < 0 {
			break
		}
		pos = end + 1
	}
	return out
}

func isFence(text string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, " \t"), "```")
}

// isClosingFence reports a fence line carrying nothing but backticks.
func isClosingFence(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "```") && strings.Trim(t, "`") == ""
}

func isTableRow(text string) bool {
	return strings.Count(text, "|") >= 2 && strings.TrimSpace(text) != ""
}

// ScanRegions tokenises src line by line into an ordered list of
// non-overlapping regions. A fenced code block owns every line up to its
// closing fence, so markers inside code never produce regions of their own.
// An unterminated fence is left as plain text.
func ScanRegions(src string) []Region {
	lines := splitLines(src)
	var regions []Region

	for i := 0; i < len(lines); {
		ln := lines[i]

		if isFence(ln.text) {
			closing := -1
			for j := i + 1; j < len(lines); j++ {
				if isClosingFence(lines[j].text) {
					closing = j
					break
				}
			}
			if closing > 0 {
				regions = append(regions, Region{Kind: KindCodeBlock, Start: ln.start, End: lines[closing].end})
				i = closing + 1
				continue
			}
			i++
			continue
		}

		if isTableRow(ln.text) && i+1 < len(lines) && tableRule.MatchString(lines[i+1].text) {
			j := i + 2
			for j < len(lines) && isTableRow(lines[j].text) && !isFence(lines[j].text) {
				j++
			}
			regions = append(regions, Region{Kind: KindTable, Start: ln.start, End: lines[j-1].end})
			i = j
			continue
		}

		if headerLine.MatchString(ln.text) {
			regions = append(regions, Region{Kind: KindHeader, Start: ln.start, End: ln.end})
			i++
			continue
		}

		var kind Kind
		var match *regexp.Regexp
		switch {
		case quoteLine.MatchString(ln.text):
			kind, match = KindBlockquote, quoteLine
		case bulletLine.MatchString(ln.text):
			kind, match = KindList, bulletLine
		case numberedLine.MatchString(ln.text):
			kind, match = KindNumberedList, numberedLine
		default:
			i++
			continue
		}
		j := i + 1
		for j < len(lines) && match.MatchString(lines[j].text) && !isFence(lines[j].text) {
			j++
		}
		regions = append(regions, Region{Kind: kind, Start: ln.start, End: lines[j-1].end})
		i = j
	}
	return regions
}
