package agent

import (
	"strings"

	"github.com/MLiu666/EvoWrite/internal/intent"
	"github.com/MLiu666/EvoWrite/internal/learner"
	"github.com/MLiu666/EvoWrite/internal/llm"
	"github.com/MLiu666/EvoWrite/internal/store"
)

const systemPrompt = "You are an expert EFL (English as a Foreign Language) writing instructor. Provide helpful, educational, and encouraging responses to students."

// promptTemplates are keyed by intent; {user_input}, {proficiency_level} and
// {course_type} are filled per turn. Intents without a template use the
// Answer template.
var promptTemplates = map[intent.Intent]string{
	intent.Answer: `You are an expert EFL (English as a Foreign Language) writing instructor.
A student has asked: "{user_input}"

Provide a clear, educational answer that:
1. Directly addresses their question
2. Uses language appropriate for their proficiency level ({proficiency_level})
3. Includes specific examples
4. Encourages further learning

Keep your response supportive and encouraging.`,

	intent.LanguageUse: `You are an expert EFL writing instructor specializing in language use and grammar.
A student has submitted this text for language improvement: "{user_input}"

Provide specific feedback on:
1. Grammar and syntax issues
2. Word choice and vocabulary improvements
3. Sentence structure enhancements
4. Clarity and coherence

Proficiency level: {proficiency_level}
Course type: {course_type}

Format your response with clear explanations and examples.`,

	intent.Revision: `You are an expert EFL writing instructor helping with text revision.
Student's text: "{user_input}"

Provide revision suggestions focusing on:
1. Content organization and structure
2. Argument development and support
3. Transitions and flow
4. Overall coherence and unity

Consider the student's proficiency level ({proficiency_level}) and course type ({course_type}).
Provide specific, actionable suggestions.`,

	intent.Evaluation: `You are an expert EFL writing instructor providing comprehensive evaluation.
Student's text: "{user_input}"

Provide a balanced evaluation covering:
1. Strengths of the writing
2. Areas for improvement
3. Specific suggestions for enhancement
4. Overall assessment and encouragement

Proficiency level: {proficiency_level}
Course type: {course_type}

Be constructive and supportive in your feedback.`,

	intent.Generation: `You are an expert EFL writing instructor helping with content generation.
Student's request: "{user_input}"

Generate helpful content such as:
1. Ideas and examples related to their topic
2. Outline suggestions
3. Sample sentences or paragraphs
4. Vocabulary and phrases relevant to the topic

Adapt to proficiency level ({proficiency_level}) and course type ({course_type}).
Encourage the student to develop ideas in their own voice.`,

	intent.Information: `You are an expert EFL writing instructor providing educational information.
Student's inquiry: "{user_input}"

Provide comprehensive information about:
1. The topic or concept they're asking about
2. Relevant examples and applications
3. How it relates to their writing development
4. Additional resources or next steps

Tailor to proficiency level ({proficiency_level}) and course type ({course_type}).`,
}

// fallbackResponses are the canned per-intent strings substituted when the
// generation backend is unavailable.
var fallbackResponses = map[intent.Intent]string{
	intent.Answer:      "I'd be happy to help answer your question. Could you please provide more specific details about what you'd like to know?",
	intent.LanguageUse: "I can help you improve your language use. Please share the text you'd like me to review, and I'll provide specific suggestions for grammar, vocabulary, and clarity.",
	intent.Revision:    "I can assist you with revising your writing. Please share your draft, and I'll help you improve its organization, development, and flow.",
	intent.Evaluation:  "I can provide feedback on your writing. Please share your text, and I'll give you a balanced evaluation with specific suggestions for improvement.",
	intent.Generation:  "I can help you generate ideas and content for your writing. What specific topic or type of writing are you working on?",
	intent.Information: "I can provide information to help with your writing. What specific topic or writing concept would you like to learn more about?",
}

const defaultFallback = "I'm here to help you with your English writing. How can I assist you today?"

func buildPrompt(it intent.Intent, userInput string, profile *store.Learner, features learner.ContextFeatures) string {
	template, ok := promptTemplates[it]
	if !ok {
		template = promptTemplates[intent.Answer]
	}

	prompt := strings.NewReplacer(
		"{user_input}", userInput,
		"{proficiency_level}", profile.ProficiencyLevel,
		"{course_type}", profile.CourseType,
	).Replace(template)

	if features.IsMultilingual {
		prompt += "\n\nNote: The student may use code-switching (mixing languages). Address this appropriately."
	}
	if features.MentionsEssay {
		prompt += "\n\nNote: This relates to essay writing. Focus on academic writing skills."
	}

	return prompt
}

// paramsFor adjusts generation parameters to the proficiency tier: shorter
// and more deterministic for beginners, longer and freer for advanced
// learners.
func paramsFor(proficiency string) llm.Params {
	params := llm.Params{
		MaxTokens:        450,
		Temperature:      0.5,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}

	switch proficiency {
	case store.ProficiencyBeginner:
		params.MaxTokens = 300
		params.Temperature = 0.3
	case store.ProficiencyAdvanced:
		params.MaxTokens = 600
		params.Temperature = 0.7
	}

	return params
}

func fallbackResponse(it intent.Intent) string {
	if response, ok := fallbackResponses[it]; ok {
		return response
	}
	return defaultFallback
}
