package chunking

import "unicode/utf8"

// LookbackWindow bounds how far SplitText scans backward for a break character.
const LookbackWindow = 20

func isBreakRune(r rune) bool {
	switch r {
	case ' ', '.', ',', ':', ';', '!', '?', '\n':
		return true
	}
	return false
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// RuneLen reports the length of s in runes, the unit all chunk sizes use.
func RuneLen(s string) int { return utf8.RuneCountInString(s) }

// SplitText divides text into roughly numChunks pieces, preferring to end a
// piece right after whitespace or punctuation instead of inside a word.
// Joining the result always reproduces text. Empty text yields no chunks.
func SplitText(text string, numChunks int) []string {
	if text == "" {
		return nil
	}
	if numChunks < 1 {
		numChunks = 1
	}
	runes := []rune(text)
	size := ceilDiv(len(runes), numChunks)
	if size < 1 {
		size = 1
	}

	chunks := make([]string, 0, numChunks)
	cur := 0
	for cur < len(runes) {
		end := cur + size
		if end > len(runes) {
			end = len(runes)
		}
		if end < len(runes) && runes[end] != ' ' && runes[end-1] != ' ' {
			end = backtrackToBreak(runes, cur, end)
		}
		chunks = append(chunks, string(runes[cur:end]))
		cur = end
	}
	return chunks
}

// backtrackToBreak returns the position right after the nearest break rune
// within LookbackWindow of end, or end itself when there is none.
func backtrackToBreak(runes []rune, cur, end int) int {
	for k := end; k > cur && end-k < LookbackWindow; k-- {
		if isBreakRune(runes[k-1]) {
			return k
		}
	}
	return end
}
