package inp

import (
	"strings"
)

const (
	quote      = `"`
	emptyQuote = `""`
)

// Tokenize splits one INP line into tokens.
// Quoted substrings are kept as a single token together with their quotes, so a name with spaces is never fragmented.
// An explicit empty pair of quotes becomes the two-character token `""`.
// Embedded (escaped) quotes are not supported.
func Tokenize(line string) []string {
	if !strings.Contains(line, quote) {
		return strings.Fields(line)
	}
	segments := strings.Split(line, quote)
	tokens := make([]string, 0, len(segments))
	for i, segment := range segments {
		// Odd segments are enclosed in quotes as long as a closing quote follows
		if i%2 == 1 && i < len(segments)-1 {
			if segment == "" {
				tokens = append(tokens, emptyQuote)
			} else {
				tokens = append(tokens, quote+segment+quote)
			}
			continue
		}
		tokens = append(tokens, strings.Fields(segment)...)
	}
	return tokens
}
