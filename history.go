package ira

// TruncateHistory truncates the conversation history based on token and
// message limits. It applies the message limit first, then the token limit,
// removing oldest messages as needed. A limit of zero or less means
// unlimited. Returns the truncated history with the most recent messages
// preserved.
func TruncateHistory(history []Message, tokenLimit, messageLimit int) []Message {
	if len(history) == 0 {
		return history
	}

	if messageLimit > 0 && len(history) > messageLimit {
		history = history[len(history)-messageLimit:]
	}

	if tokenLimit <= 0 {
		return history
	}

	totalTokens := 0
	for _, msg := range history {
		totalTokens += EstimateTokens(msg.Text)
	}

	// Remove oldest messages until within token limit
	for totalTokens > tokenLimit && len(history) > 0 {
		totalTokens -= EstimateTokens(history[0].Text)
		history = history[1:]
	}

	return history
}
