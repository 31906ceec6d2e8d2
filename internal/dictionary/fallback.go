package dictionary

// Fallback returns the compiled-in list of common words (source iii of
// spec.md 4.B), used only when neither the user-supplied file nor the
// built-in on-disk file produced any entries. Frequencies are seeded high
// so these always outrank accidental noise in a thin personal dictionary.
func Fallback() []Entry {
	words := []string{
		"the", "be", "to", "of", "and", "a", "in", "that", "have", "it",
		"for", "not", "on", "with", "he", "as", "you", "do", "at", "this",
		"but", "his", "by", "from", "they", "we", "say", "her", "she", "or",
		"an", "will", "my", "one", "all", "would", "there", "their", "what",
		"so", "up", "out", "if", "about", "who", "get", "which", "go", "me",
		"when", "make", "can", "like", "time", "no", "just", "him", "know",
		"take", "people", "into", "year", "your", "good", "some", "could",
		"them", "see", "other", "than", "then", "now", "look", "only",
		"come", "its", "over", "think", "also", "back", "after", "use",
		"two", "how", "our", "work", "first", "well", "way", "even", "new",
		"want", "because", "any", "these", "give", "day", "most", "us",
		"word", "find", "long", "down", "side", "been", "call", "did",
		"number", "part", "made", "live",
	}

	entries := make([]Entry, len(words))
	for i, w := range words {
		entries[i] = Entry{Word: w, Frequency: 1000}
	}
	return entries
}
