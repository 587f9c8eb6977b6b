package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTaskType(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Help me write a Python function to sort a list", "coding"},
		{"debug this for me", "coding"},
		{"Write a professional email for a job application", "writing"},
		{"Analyze the pros and cons of remote work", "analysis"},
		{"Solve this equation: 2x + 5 = 13", "math"},
		{"Give me creative ideas for a startup business", "creative"},
		{"teach me French", "education"},
		{"hello there", "general"},
		{"", "general"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectTaskType(tc.text), "text: %q", tc.text)
	}
}

func TestDetectTaskTypePriorityOrder(t *testing.T) {
	// "code" and "write" both match; coding outranks writing.
	assert.Equal(t, "coding", DetectTaskType("write code for me"))
	// "design" is creative, but "analyze" wins by priority.
	assert.Equal(t, "analysis", DetectTaskType("analyze this design"))
}

func TestDetectTaskTypeCaseInsensitive(t *testing.T) {
	assert.Equal(t, "math", DetectTaskType("CALCULATE THE PROBABILITY"))
}

func TestDetectChallenge(t *testing.T) {
	assert.True(t, DetectChallenge("Why is that true?"))
	assert.True(t, DetectChallenge("I disagree, prove it with a source"))
	assert.True(t, DetectChallenge("show me the EVIDENCE"))
	assert.False(t, DetectChallenge("thanks, that was great"))
}
