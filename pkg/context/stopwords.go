package context

// stopWords is the closed, English-default stop-word set filtered out of
// keyword extraction. It is intentionally small and built-in rather than
// configurable — the spec treats it as a closed list.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "can": true, "had": true, "her": true, "was": true,
	"one": true, "our": true, "out": true, "day": true, "get": true, "has": true,
	"him": true, "his": true, "how": true, "man": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "way": true, "who": true, "boy": true,
	"did": true, "its": true, "let": true, "put": true, "say": true, "she": true,
	"too": true, "use": true, "that": true, "with": true, "have": true, "this": true,
	"will": true, "your": true, "from": true, "they": true, "know": true, "want": true,
	"been": true, "good": true, "much": true, "some": true, "time": true, "very": true,
	"when": true, "come": true, "here": true, "just": true, "like": true, "long": true,
	"make": true, "many": true, "over": true, "such": true, "take": true, "than": true,
	"them": true, "well": true, "were": true, "about": true, "after": true, "again": true,
	"also": true, "into": true, "only": true, "other": true, "should": true, "there": true,
	"these": true, "think": true, "where": true, "which": true, "would": true, "their": true,
}

// isStopWord reports whether word (already lower-cased) is in the built-in
// stop-word set.
func isStopWord(word string) bool {
	return stopWords[word]
}
