package llm

import "strings"

// StripCodeFence removes a markdown code fence that wraps the whole response, along with
// its language tag. Text outside the fence means the response is not wrapped, so it is
// returned trimmed but otherwise unchanged.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 6 || !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	// Skip a language identifier on the first line
	if idx := strings.Index(body, "\n"); idx >= 0 {
		firstLine := body[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[<") {
			body = body[idx+1:]
		}
	}
	return strings.TrimSpace(body)
}
