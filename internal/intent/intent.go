package intent

import (
	"regexp"
	"strings"
)

// Intent labels a learner message with its communicative purpose.
// The label set follows the RECIPE4U dialogue-act coding scheme.
type Intent string

const (
	Answer       Intent = "Answer"
	Ack          Intent = "ACK"
	LanguageUse  Intent = "R Language Use"
	Information  Intent = "R Information"
	Revision     Intent = "R Revision"
	Evaluation   Intent = "R Evaluation"
	Generation   Intent = "R Generation"
	Negotiation  Intent = "Negotiation"
	Confirmation Intent = "R Confirmation"
	Conversation Intent = "Conversation"
	Translation  Intent = "R Translation"
	Other        Intent = "Other"
)

type rule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+expr))
	}
	return compiled
}

// rules is the canonical rule table. Order matters: when two intents score
// equally, the one listed first wins. Writing-specific requests rank ahead
// of the generic question intent so that "How do I fix comma usage in this
// sentence?" resolves to R Language Use rather than Answer.
var rules = []rule{
	{LanguageUse, compile(
		`\b(grammar|syntax|word choice|vocabulary)\b`,
		`\b(correct|fix|improve|better way)\b`,
		`\b(comma|period|punctuation|spelling)\b`,
		`\b(tense|verb|noun|adjective|adverb)\b`,
	)},
	{Answer, compile(
		`\b(what|how|why|when|where|which|who)\b`,
		`\b(question|ask|tell me|explain)\b`,
		`\?`,
		`\b(help me understand|clarify|define)\b`,
	)},
	{Ack, compile(
		`\b(yes|ok|okay|right|correct|thanks|thank you)\b`,
		`\b(i see|i understand|got it|makes sense)\b`,
		`\b(good|great|perfect|excellent)\b`,
	)},
	{Information, compile(
		`\b(information|details|facts|data)\b`,
		`\b(research|source|reference|citation)\b`,
		`\b(background|context|history)\b`,
	)},
	{Revision, compile(
		`\b(revise|edit|rewrite|improve|modify)\b`,
		`\b(draft|version|change|update)\b`,
		`\b(better|enhance|polish|refine)\b`,
	)},
	{Evaluation, compile(
		`\b(evaluate|assess|judge|rate|score)\b`,
		`\b(feedback|opinion|thoughts|review)\b`,
		`\b(good|bad|quality|strength|weakness)\b`,
	)},
	{Generation, compile(
		`\b(generate|create|write|produce|make)\b`,
		`\b(example|sample|template|outline)\b`,
		`\b(idea|suggestion|topic|theme)\b`,
	)},
	{Negotiation, compile(
		`\b(but|however|although|disagree|different)\b`,
		`\b(alternative|another way|instead)\b`,
		`\b(negotiate|discuss|debate)\b`,
	)},
	{Confirmation, compile(
		`\b(confirm|verify|check|sure|certain)\b`,
		`\b(is this right|am i correct|does this work)\b`,
	)},
	{Conversation, compile(
		`\b(hello|hi|hey|good morning|good afternoon)\b`,
		`\b(how are you|nice to meet|chat|talk)\b`,
	)},
	{Translation, compile(
		`\b(translate|translation|chinese|korean)\b`,
		`\b(mean in|say in|express in)\b`,
	)},
}

// Classify scores text against every rule's pattern list and returns the
// winning intent with a confidence in [0,1]. Match counts are normalized by
// word count so short messages aren't drowned out by long ones. When nothing
// matches, the message is Other at a fixed 0.5 confidence.
func Classify(text string) (Intent, float64) {
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		return Other, 0.5
	}

	best := Other
	bestScore := 0.0

	for _, r := range rules {
		matches := 0
		for _, p := range r.patterns {
			matches += len(p.FindAllString(text, -1))
		}

		if matches == 0 {
			continue
		}

		score := float64(matches) / float64(wordCount)
		if score > bestScore {
			bestScore = score
			best = r.intent
		}
	}

	if bestScore == 0 {
		return Other, 0.5
	}

	confidence := bestScore * 2
	if confidence > 1.0 {
		confidence = 1.0
	}

	return best, confidence
}

// All returns every intent in canonical order, Other last.
func All() []Intent {
	intents := make([]Intent, 0, len(rules)+1)
	for _, r := range rules {
		intents = append(intents, r.intent)
	}
	return append(intents, Other)
}

// Known reports whether value is a recognized intent label.
func Known(value string) bool {
	for _, it := range All() {
		if string(it) == value {
			return true
		}
	}
	return false
}
