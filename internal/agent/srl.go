package agent

import (
	"github.com/MLiu666/EvoWrite/internal/conversation"
	"github.com/MLiu666/EvoWrite/internal/intent"
)

// SRL (self-regulated-learning) strategy tips, tagged by psychological focus.
var srlStrategies = map[string][]string{
	"cognitive": {
		"Break down complex writing tasks into smaller, manageable steps.",
		"Use graphic organizers or mind maps to organize your ideas before writing.",
		"Practice summarizing main points to improve comprehension and clarity.",
		"Connect new writing concepts to what you already know.",
	},
	"metacognitive": {
		"Set specific, achievable goals for each writing session.",
		"Monitor your progress and adjust your writing strategies as needed.",
		"Reflect on what writing techniques work best for you.",
		"Plan your writing process before you begin.",
	},
	"social_behavioral": {
		"Seek feedback from peers or instructors on your writing.",
		"Join writing groups or discussion forums for practice.",
		"Create a dedicated, distraction-free writing environment.",
		"Establish regular writing schedules and stick to them.",
	},
	"motivational": {
		"Remember your personal goals for improving English writing.",
		"Celebrate small improvements and progress in your writing.",
		"Focus on learning from mistakes rather than avoiding them.",
		"Connect your writing practice to your future academic or career goals.",
	},
}

var intentToSRL = map[intent.Intent]string{
	intent.Answer:      "cognitive",
	intent.LanguageUse: "cognitive",
	intent.Revision:    "metacognitive",
	intent.Evaluation:  "metacognitive",
	intent.Generation:  "cognitive",
	intent.Information: "cognitive",
	intent.Ack:         "motivational",
	intent.Negotiation: "social_behavioral",
}

// selectStrategy picks an SRL tip for the turn. New learners get a
// motivational nudge; learners with low recent ratings get a social-support
// one; everyone else gets the first tip of their intent's focus.
func selectStrategy(it intent.Intent, state *conversation.State) string {
	if state != nil {
		if state.InteractionCount < 5 {
			return srlStrategies["motivational"][0]
		}
		// unrated history averages to 0, which also routes here
		if avgRating(state.RecentRatings) < 3 {
			return srlStrategies["social_behavioral"][0]
		}
	}

	focus, ok := intentToSRL[it]
	if !ok {
		focus = "cognitive"
	}
	return srlStrategies[focus][0]
}

func avgRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
