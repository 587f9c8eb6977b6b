package service

import "strings"

// topicKeywords is the fixed keyword list tallied into the popular-topics
// analytics. Matching is case-insensitive substring containment, deliberately
// not word-bounded ("art" matches "start").
var topicKeywords = []string{
	"code", "program", "script", "function", "algorithm", "debug", "fix", "optimize",
	"write", "essay", "article", "story", "email", "letter", "report", "blog",
	"analyze", "explain", "compare", "evaluate", "review", "assess", "examine",
	"calculate", "solve", "equation", "math", "statistics", "probability", "formula",
	"create", "design", "imagine", "brainstorm", "idea", "creative", "art",
	"learn", "teach", "tutorial", "guide", "how to", "step by step",
	"research", "study", "investigate", "explore", "discover", "understand",
}

// ExtractTopics returns the keywords contained in text, each mapped to one
// occurrence. Pure function.
func ExtractTopics(text string) map[string]int {
	lower := strings.ToLower(text)
	topics := make(map[string]int)
	for _, kw := range topicKeywords {
		if strings.Contains(lower, kw) {
			topics[kw]++
		}
	}
	return topics
}
