package streaming

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"learnify-go/internal/constants"
)

// ReadEnvelopes parses a stream body framed as NDJSON or SSE back into
// envelopes. Blank lines, SSE comments and [DONE] markers are skipped.
func ReadEnvelopes(r io.Reader) ([]Envelope, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, constants.StreamScannerInitialBufferSize), constants.StreamScannerMaxBufferSize)

	var envs []Envelope
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == ':' {
			continue
		}
		line = bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
		if bytes.EqualFold(line, []byte("[DONE]")) {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return envs, err
		}
		envs = append(envs, env)
	}
	return envs, scanner.Err()
}

// ReassembleText concatenates the content of all non-terminal envelopes.
func ReassembleText(envs []Envelope) string {
	var sb strings.Builder
	for _, env := range envs {
		if env.Done || env.Type != TypeText {
			continue
		}
		sb.WriteString(env.Content)
	}
	return sb.String()
}

// IsCompleteStream reports whether envs ends with exactly one terminal envelope.
func IsCompleteStream(envs []Envelope) bool {
	terminal := 0
	for _, env := range envs {
		if env.Done {
			terminal++
		}
	}
	return terminal == 1 && len(envs) > 0 && envs[len(envs)-1].Done
}
