package service

import (
	"encoding/json"
	"fmt"

	"github.com/liliang-cn/chatspark/internal/domain"
)

// welcomeText opens every fresh session.
const welcomeText = "Hello! I'm your advanced AI assistant with comprehensive capabilities. I can help you with:\n\n" +
	"• **Programming** - Code in any language, debug, optimize\n" +
	"• **Writing** - Essays, emails, reports, creative content\n" +
	"• **Analysis** - Data analysis, research, problem-solving\n" +
	"• **Math** - Equations, calculations, statistics\n" +
	"• **Creative** - Brainstorming, design ideas, innovation\n" +
	"• **Learning** - Tutorials, explanations, step-by-step guides\n\n" +
	"What would you like to work on today?"

// fallbackAnswer substitutes for malformed or failed completions.
const fallbackAnswer = "I'm here to help with any task! Whether you need coding help, writing assistance, " +
	"analysis, math solutions, creative ideas, or educational guidance, I'm ready to assist. " +
	"What would you like to work on?"

// assistantReply is the strict-JSON shape the completion service is asked to
// return. Partial or invalid replies are tolerated everywhere.
type assistantReply struct {
	Answer            string       `json:"answer"`
	Defense           string       `json:"defense"`
	HallucinationRisk domain.Level `json:"hallucination_risk"`
	DefenseQuality    domain.Level `json:"defense_quality"`
	Tone              domain.Tone  `json:"tone"`
	TaskType          string       `json:"task_type"`
}

// BuildSystemPrompt describes the assistant's role and capabilities with the
// selected personality baked in.
func BuildSystemPrompt(personality domain.Tone) string {
	return fmt.Sprintf(`
You are an advanced AI assistant with comprehensive capabilities across multiple domains. You can help with:

**Technical Skills:**
- Programming in all major languages (Python, JavaScript, Java, C++, etc.)
- Web development (frontend, backend, full-stack)
- Data science and machine learning
- Database design and optimization
- System architecture and DevOps
- Mobile app development
- Game development

**Writing & Communication:**
- Creative writing (stories, poems, scripts)
- Professional writing (emails, reports, proposals)
- Academic writing (essays, research papers)
- Content creation (blogs, articles, social media)
- Technical documentation
- Translation and language learning

**Analysis & Problem Solving:**
- Data analysis and visualization
- Mathematical problem solving
- Logical reasoning and critical thinking
- Research and fact-checking
- Business analysis and strategy
- Scientific explanations

**Creative & Design:**
- Brainstorming and ideation
- Design concepts and mockups
- Creative problem solving
- Art and music concepts
- Marketing and branding ideas

**Education & Learning:**
- Tutoring in any subject
- Step-by-step explanations
- Study guides and summaries
- Quiz and test preparation
- Skill development guidance

**Behavioral Guidelines:**
- Persona: %s but always professional and helpful
- Provide accurate, well-researched information
- When coding, include comments and explanations
- For complex topics, break down into digestible parts
- Always consider best practices and current standards
- If uncertain, acknowledge limitations and suggest alternatives
- Be encouraging and supportive in learning scenarios
- Maintain ethical standards and safety guidelines
- In defensive mode, provide thorough reasoning and evidence
- Use appropriate formatting (code blocks, lists, tables) when helpful
`, personality)
}

// BuildUserPrompt wraps the user message with the detected task category and
// instructions to return the structured JSON result.
func BuildUserPrompt(userMessage string, wantDefense bool, taskType string) string {
	defenseLine := "Include defense only if helpful."
	if wantDefense {
		defenseLine = "Include detailed defense and methodology."
	}
	return fmt.Sprintf(`
Task: Provide a comprehensive, helpful response to the user's request.

Task Type Detected: %s

User Message: """%s"""

Instructions:
- If this is a coding task, provide complete, working code with explanations
- If this is a writing task, create high-quality, well-structured content
- If this is an analysis task, provide thorough analysis with supporting reasoning
- If this is a math task, show step-by-step solutions
- If this is a creative task, provide imaginative and innovative ideas
- If this is an education task, create clear, educational explanations
- For any task, be comprehensive and detailed

Return STRICT JSON with keys:
  answer: string (complete response with proper formatting),
  defense: string (reasoning and methodology; empty if not needed),
  hallucination_risk: 'low'|'medium'|'high',
  defense_quality: 'low'|'medium'|'high',
  tone: 'friendly'|'logical'|'playful'|'confident',
  task_type: string (coding|writing|analysis|math|creative|education|general)

%s
Ensure the JSON is valid. No Markdown, no backticks.`, taskType, userMessage, defenseLine)
}

// BuildCritiquePrompt asks the model to improve its own prior structured
// result, keeping the same JSON shape.
func BuildCritiquePrompt(draft assistantReply) string {
	raw, _ := json.Marshal(draft)
	return fmt.Sprintf("You wrote this response: %s\n"+
		"Improve the response: make it more comprehensive, accurate, and helpful. "+
		"For coding tasks, ensure code is complete and well-commented. "+
		"For analysis, provide deeper insights. Return the SAME JSON shape only.", raw)
}

// parseReply decodes a structured reply, returning fallback untouched when
// the raw text is not valid JSON.
func parseReply(raw string, fallback assistantReply) assistantReply {
	var reply assistantReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return fallback
	}
	return reply
}
