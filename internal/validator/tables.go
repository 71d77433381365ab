package validator

import "regexp"

// quality criteria: positive/negative indicator phrases are matched as
// case-insensitive substrings of the response.
type criterion struct {
	name     string
	minScore float64
	positive []string
	negative []string
}

var qualityCriteria = []criterion{
	{
		name:     "clarity",
		minScore: 0.7,
		positive: []string{"clear explanation", "step-by-step", "examples provided"},
		negative: []string{"vague", "confusing", "unclear"},
	},
	{
		name:     "accuracy",
		minScore: 0.8,
		positive: []string{"factually correct", "proper grammar", "appropriate terminology"},
		negative: []string{"incorrect information", "grammar errors", "misleading"},
	},
	{
		name:     "helpfulness",
		minScore: 0.7,
		positive: []string{"actionable advice", "specific suggestions", "relevant examples"},
		negative: []string{"generic response", "unhelpful", "irrelevant"},
	},
	{
		name:     "engagement",
		minScore: 0.6,
		positive: []string{"encouraging tone", "interactive elements", "motivational"},
		negative: []string{"dry", "boring", "discouraging"},
	},
}

type standard struct {
	name         string
	requirements []string
}

var educationalStandards = []standard{
	{
		name: "age_appropriate",
		requirements: []string{
			"suitable language level",
			"appropriate content complexity",
			"no inappropriate references",
		},
	},
	{
		name: "pedagogically_sound",
		requirements: []string{
			"builds on prior knowledge",
			"scaffolded learning",
			"clear learning objectives",
			"promotes self-regulation",
		},
	},
	{
		name: "culturally_sensitive",
		requirements: []string{
			"respects cultural differences",
			"inclusive language",
			"avoids stereotypes",
			"considers EFL context",
		},
	},
	{
		name: "academically_rigorous",
		requirements: []string{
			"accurate information",
			"proper citations when needed",
			"evidence-based suggestions",
			"promotes critical thinking",
		},
	},
}

type biasCategory struct {
	name     string
	patterns []*regexp.Regexp
}

var biasCategories = []biasCategory{
	{
		name: "gender_bias",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(he|his|him)\b.*\b(strong|leader|assertive)\b`),
			regexp.MustCompile(`(?i)\b(she|her)\b.*\b(emotional|sensitive|nurturing)\b`),
		},
	},
	{
		name: "cultural_bias",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(western|eastern)\s+(way|approach|method)\b`),
			regexp.MustCompile(`(?i)\b(american|chinese|korean)\s+(students|learners)\s+(are|tend to)\b`),
		},
	},
	{
		name: "linguistic_bias",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bnative\s+speaker\b`),
			regexp.MustCompile(`(?i)\bperfect\s+english\b`),
			regexp.MustCompile(`(?i)\bbroken\s+english\b`),
		},
	},
	{
		name: "ability_bias",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(smart|intelligent)\s+(students|learners)\b`),
			regexp.MustCompile(`(?i)\b(slow|weak)\s+(learners|students)\b`),
		},
	},
}

type consistencyAspect struct {
	name        string
	description string
}

var consistencyAspects = []consistencyAspect{
	{"terminology", "Check for consistent use of technical terms"},
	{"tone", "Verify consistent supportive and encouraging tone"},
	{"difficulty_level", "Ensure appropriate difficulty progression"},
	{"learning_objectives", "Align with stated learning goals"},
	{"feedback_style", "Maintain consistent feedback approach"},
}

// words that mark the supportive register the tutor is expected to keep
var encouragingWords = []string{"great", "excellent", "good", "well done", "keep up"}

// SRL vocabulary used by the self-regulation requirement check
var srlKeywords = []string{"goal", "plan", "monitor", "reflect", "strategy"}
