package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much upstream error body is surfaced to a caller.
const maxErrorBody = 2048

// Result is what a tool invocation hands back to the MCP transport. Ok
// results carry rendered content; failed results carry the error kind and
// a single human-readable message.
type Result struct {
	Ok      bool
	Content string
	Kind    ErrorKind
	Message string
}

// Normalize converts a dispatch outcome into a transport-ready result.
// Successful JSON bodies are re-indented for readability; bodies that do
// not parse pass through untouched, because a malformed upstream body is
// still the answer the upstream gave.
func Normalize(out Outcome) Result {
	switch out.Kind {
	case OutcomeSuccess:
		return Result{Ok: true, Content: renderContent(out)}
	case OutcomeUpstreamError:
		return Result{
			Kind:    ErrKindUpstream,
			Message: fmt.Sprintf("%d: %s", out.Status, upstreamErrorText(out.Status, out.Body)),
		}
	default:
		return Result{Kind: ErrKindTransport, Message: out.Failure.Error()}
	}
}

// renderContent pretty-prints structured bodies with two-space indentation
// and passes everything else through as raw text.
func renderContent(out Outcome) string {
	if len(out.Body) == 0 {
		return ""
	}
	if looksLikeJSON(out.ContentType, out.Body) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out.Body, "", "  "); err == nil {
			return buf.String()
		}
	}
	return string(out.Body)
}

func looksLikeJSON(contentType string, body []byte) bool {
	if strings.Contains(contentType, "json") {
		return true
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// upstreamErrorText extracts the "error" field from a JSON error body when
// one is present, otherwise falls back to the raw body. Either way the text
// is truncated so a huge error page cannot flood the caller.
func upstreamErrorText(status int, body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return truncateText(errResp.Error)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	return truncateText(text)
}

func truncateText(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "... (truncated)"
}
