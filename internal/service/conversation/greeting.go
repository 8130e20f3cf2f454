package conversation

import "strings"

// greetingTokens is the bounded list of social openers and closers that
// should not burn a completion call. Matched against the whole message only.
var greetingTokens = map[string]struct{}{
	"bonjour":        {},
	"bonsoir":        {},
	"salut":          {},
	"coucou":         {},
	"hello":          {},
	"hi":             {},
	"hey":            {},
	"merci":          {},
	"merci beaucoup": {},
	"thanks":         {},
	"ok":             {},
	"d'accord":       {},
	"ça va":          {},
	"au revoir":      {},
	"bonne journée":  {},
	"à bientôt":      {},
}

// IsGreeting reports whether the message consists solely of a greeting or
// closing token, case-insensitively, with trailing punctuation ignored.
func IsGreeting(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.TrimRight(normalized, " !?.…,")
	if normalized == "" {
		return false
	}
	_, ok := greetingTokens[normalized]
	return ok
}
