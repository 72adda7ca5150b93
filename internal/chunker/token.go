package chunker

// EstimateTokens gives a rough token count using the ~4 chars/token heuristic.
// Exact tokenization is not required for chunking; the estimate only has to be
// deterministic and monotonic in text length so budget checks stay consistent
// within one run.
func EstimateTokens(text string) int {
	return tokensForChars(len(text))
}

func tokensForChars(chars int) int {
	if chars <= 0 {
		return 0
	}
	return (chars + 3) / 4
}
