package agent

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MLiu666/EvoWrite/internal/store"
)

// PersonalizationStats summarizes a learner's history for adaptive responses
// and the analytics endpoint.
type PersonalizationStats struct {
	InteractionCount int      `json:"interaction_count"`
	AvgRating        float64  `json:"avg_rating"`
	PreferredIntents []string `json:"preferred_intents"`
	AvgInputLength   float64  `json:"avg_input_length"`
	SessionCount     int      `json:"session_count"`
	RecentActivity   int      `json:"recent_activity"`
}

// PersonalizationData computes usage statistics over the learner's full
// interaction history. A learner with no interactions gets a zero-valued
// result rather than an error.
func (a *Agent) PersonalizationData(learnerID int64) (*PersonalizationStats, error) {
	interactions, err := a.store.AllByLearner(learnerID)
	if err != nil {
		return nil, err
	}

	stats := &PersonalizationStats{
		InteractionCount: len(interactions),
		PreferredIntents: []string{},
	}
	if len(interactions) == 0 {
		return stats, nil
	}

	var ratingSum, ratingCount int
	var inputLenSum int
	var intents []string
	sessions := make(map[string]struct{})
	cutoff := time.Now().UTC().AddDate(0, 0, -7)

	for _, it := range interactions {
		if it.UserRating != nil {
			ratingSum += *it.UserRating
			ratingCount++
		}
		if it.IntentType != nil {
			intents = append(intents, *it.IntentType)
		}
		inputLenSum += utf8.RuneCountInString(it.UserInput)
		sessions[it.SessionID] = struct{}{}
		if it.CreatedAt.After(cutoff) {
			stats.RecentActivity++
		}
	}

	if ratingCount > 0 {
		stats.AvgRating = float64(ratingSum) / float64(ratingCount)
	}
	stats.AvgInputLength = float64(inputLenSum) / float64(len(interactions))
	stats.SessionCount = len(sessions)
	stats.PreferredIntents = topIntents(intents, 3)

	return stats, nil
}

// topIntents returns the most frequent intent labels, most common first.
func topIntents(intents []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, it := range intents {
		if _, seen := counts[it]; !seen {
			order = append(order, it)
		}
		counts[it]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// beginnerReplacements swaps formal vocabulary for plainer words when the
// learner is at beginner proficiency.
var beginnerReplacer = strings.NewReplacer(
	"utilize", "use",
	"demonstrate", "show",
	"facilitate", "help",
	"implement", "do",
)

const (
	scientificNote = "\n\n*Note: For scientific writing, focus on clarity, precision, and logical structure.*"
	academicNote   = "\n\n*Note: Consider advanced rhetorical strategies and sophisticated argumentation.*"
)

// personalize adapts a generated response to the learner's proficiency level
// and course type.
func personalize(content string, profile *store.Learner) string {
	if profile == nil {
		return content
	}

	if profile.ProficiencyLevel == store.ProficiencyBeginner {
		content = beginnerReplacer.Replace(content)
	}

	switch profile.CourseType {
	case store.CourseScientificWriting:
		content += scientificNote
	case store.CourseAdvancedWriting:
		content += academicNote
	}

	return content
}
