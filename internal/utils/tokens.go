package utils

// Rough token estimates for prompts, used for logging and context checks.
// Roughly 1 token per 4 characters; no model tokenizer is consulted.

const charsPerToken = 4

// CountTokens estimates the number of tokens in text. Any non-empty text
// counts as at least one token.
func CountTokens(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	if t := n / charsPerToken; t > 0 {
		return t
	}
	return 1
}

// FitsContext reports whether text plus reserve output tokens fits a model
// context window. A non-positive window means unknown and always fits.
func FitsContext(text string, reserve, window int) bool {
	if window <= 0 {
		return true
	}
	return CountTokens(text)+reserve <= window
}
