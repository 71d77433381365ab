// Package learner derives structural and linguistic features from a raw
// learner message. Extraction is pure: same text and profile always yield
// the same features.
package learner

import (
	"strings"
	"unicode/utf8"

	"github.com/MLiu666/EvoWrite/internal/store"
)

// essayIndicators flag messages that are about the learner's own writing.
var essayIndicators = []string{"paragraph", "essay", "draft", "writing", "composition"}

// essayLengthThreshold: inputs longer than this are assumed to carry pasted
// essay content rather than a short question.
const essayLengthThreshold = 200

type ContextFeatures struct {
	InputLength       int    `json:"input_length"`
	WordCount         int    `json:"word_count"`
	HasQuestionMark   bool   `json:"has_question_mark"`
	HasEssayContent   bool   `json:"has_essay_content"`
	CourseType        string `json:"course_type"`
	ProficiencyLevel  string `json:"proficiency_level"`
	PreferredLanguage string `json:"preferred_language"`
	HasChinese        bool   `json:"has_chinese"`
	HasKorean         bool   `json:"has_korean"`
	IsMultilingual    bool   `json:"is_multilingual"`
	MentionsEssay     bool   `json:"mentions_essay"`
}

// Extract computes context features for one message against the learner's
// profile.
func Extract(text string, profile *store.Learner) ContextFeatures {
	// character counts, not bytes: CJK input is the common case
	length := utf8.RuneCountInString(text)
	features := ContextFeatures{
		InputLength:       length,
		WordCount:         len(strings.Fields(text)),
		HasQuestionMark:   strings.Contains(text, "?"),
		HasEssayContent:   length > essayLengthThreshold,
		CourseType:        profile.CourseType,
		ProficiencyLevel:  profile.ProficiencyLevel,
		PreferredLanguage: profile.PreferredLanguage,
	}

	for _, r := range text {
		// CJK Unified Ideographs
		if r >= 0x4E00 && r <= 0x9FFF {
			features.HasChinese = true
		}
		// Hangul Syllables
		if r >= 0xAC00 && r <= 0xD7AF {
			features.HasKorean = true
		}
	}
	features.IsMultilingual = features.HasChinese || features.HasKorean

	lower := strings.ToLower(text)
	for _, indicator := range essayIndicators {
		if strings.Contains(lower, indicator) {
			features.MentionsEssay = true
			break
		}
	}

	return features
}
