package service

import "strings"

// taskCategory pairs a category name with the keywords that select it.
type taskCategory struct {
	name     string
	keywords []string
}

// taskCategories in priority order; the first category with a keyword hit
// wins. Everything else falls through to "general".
var taskCategories = []taskCategory{
	{"coding", []string{"code", "program", "script", "function", "algorithm", "debug", "fix", "optimize"}},
	{"writing", []string{"write", "essay", "article", "story", "email", "letter", "report", "blog"}},
	{"analysis", []string{"analyze", "explain", "compare", "evaluate", "review", "assess", "examine"}},
	{"math", []string{"calculate", "solve", "equation", "math", "statistics", "probability", "formula"}},
	{"creative", []string{"create", "design", "imagine", "brainstorm", "idea", "creative", "art"}},
	{"education", []string{"learn", "teach", "tutorial", "guide", "how to", "step by step", "explain"}},
}

// TaskTypeGeneral is the default task category.
const TaskTypeGeneral = "general"

// DetectTaskType classifies a user message into one of the seven fixed task
// categories by keyword containment. Deterministic and total.
func DetectTaskType(text string) string {
	lower := strings.ToLower(text)
	for _, cat := range taskCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.name
			}
		}
	}
	return TaskTypeGeneral
}

// challengeMarkers flag messages that push back on a previous answer and
// deserve a defended, critiqued reply.
var challengeMarkers = []string{
	"defend", "why", "how is that", "i disagree", "not true", "prove", "evidence", "source",
}

// DetectChallenge reports whether the message contains a challenge marker.
func DetectChallenge(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
