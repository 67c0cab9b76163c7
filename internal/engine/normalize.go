package engine

import "strings"

// stripChars is removed from every position of a token, not just its edges.
const stripChars = `.,!?'"`

var punctuationStripper = func() *strings.Replacer {
	pairs := make([]string, 0, len(stripChars)*2)
	for _, r := range stripChars {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}()

// Normalize splits text on whitespace and folds each token into its
// comparable form: lower-cased with stripChars removed. Tokens made only of
// stripped punctuation survive as empty strings.
func Normalize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, punctuationStripper.Replace(strings.ToLower(f)))
	}
	return tokens
}
