// Package sanitize scrubs visitor-submitted text before it is echoed into
// any downstream prompt, so a user can neither impersonate system or
// assistant turns nor spoof interview-completion markers.
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// roleMarkers are the conversation-role prefixes a visitor could use to
// forge transcript structure. Matched case-insensitively.
var roleMarkers = []string{
	"system:", "assistant:", "user:",
	"système:", "systeme:",
	"[system]", "[assistant]", "[user]",
	"<|system|>", "<|assistant|>", "<|user|>",
}

// Clean strips role-spoofing markers and the given literal tokens from the
// text, collapsing the surrounding whitespace.
func Clean(text string, tokens ...string) string {
	cleaned := text
	for _, token := range tokens {
		if token == "" {
			continue
		}
		cleaned = removeFold(cleaned, token)
	}
	for _, marker := range roleMarkers {
		cleaned = removeFold(cleaned, marker)
	}
	return strings.Join(strings.Fields(cleaned), " ")
}

// removeFold deletes every case-insensitive occurrence of token. The scan is
// rune-aligned: lowercasing can change a rune's byte length, so byte offsets
// from a lowered copy cannot be used to slice the original text.
func removeFold(text, token string) string {
	if token == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if n, ok := foldPrefixLen(text[i:], token); ok {
			b.WriteByte(' ')
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// foldPrefixLen reports whether s starts with a case-insensitive match of
// token, and the byte length of the matched prefix in s.
func foldPrefixLen(s, token string) (int, bool) {
	n := 0
	for _, tr := range token {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 {
			return 0, false
		}
		if unicode.ToLower(r) != unicode.ToLower(tr) {
			return 0, false
		}
		n += size
	}
	return n, true
}
