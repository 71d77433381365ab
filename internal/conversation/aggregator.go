// Package conversation summarizes a bounded window of recent turns for a
// session. The aggregator only reads; it never writes interaction rows.
package conversation

import (
	"fmt"
	"math"

	"github.com/MLiu666/EvoWrite/internal/store"
)

const defaultWindow = 5

// State is derived fresh per request from interaction history. It is not
// persisted on its own.
type State struct {
	SessionID        string   `json:"session_id"`
	InteractionCount int      `json:"interaction_count"`
	RecentIntents    []string `json:"recent_intents"`
	RecentRatings    []int    `json:"recent_ratings"`
	SessionDuration  float64  `json:"session_duration"`
	ContextSummary   string   `json:"context_summary"`
}

type Aggregator struct {
	store  *store.Store
	window int
}

func NewAggregator(s *store.Store, window int) *Aggregator {
	if window <= 0 {
		window = defaultWindow
	}
	return &Aggregator{store: s, window: window}
}

// Aggregate builds the conversation state from the most recent turns of the
// session, newest first.
func (a *Aggregator) Aggregate(sessionID string, learnerID int64) (*State, error) {
	recent, err := a.store.RecentBySession(sessionID, learnerID, a.window)
	if err != nil {
		return nil, err
	}

	state := &State{
		SessionID:        sessionID,
		InteractionCount: len(recent),
		RecentIntents:    make([]string, 0, len(recent)),
		RecentRatings:    make([]int, 0, len(recent)),
	}

	for _, it := range recent {
		if it.IntentType != nil {
			state.RecentIntents = append(state.RecentIntents, *it.IntentType)
		}
		if it.UserRating != nil {
			state.RecentRatings = append(state.RecentRatings, *it.UserRating)
		}
	}

	state.SessionDuration = sessionDuration(recent)
	state.ContextSummary = contextSummary(recent)

	return state, nil
}

// sessionDuration is the span between the oldest and newest turn in the
// window, in minutes rounded to two decimals. A single turn has no span.
func sessionDuration(recent []*store.Interaction) float64 {
	if len(recent) < 2 {
		return 0
	}

	newest := recent[0].CreatedAt
	oldest := recent[len(recent)-1].CreatedAt
	minutes := newest.Sub(oldest).Minutes()

	return math.Round(minutes*100) / 100
}

func contextSummary(recent []*store.Interaction) string {
	if len(recent) == 0 {
		return "New conversation session."
	}

	counts := make(map[string]int)
	var order []string
	for _, it := range recent {
		if it.IntentType == nil {
			continue
		}
		if _, seen := counts[*it.IntentType]; !seen {
			order = append(order, *it.IntentType)
		}
		counts[*it.IntentType]++
	}

	if len(order) == 0 {
		return fmt.Sprintf("Ongoing conversation with %d interactions.", len(recent))
	}

	// most frequent intent; earlier-seen wins ties
	primary := order[0]
	for _, intent := range order {
		if counts[intent] > counts[primary] {
			primary = intent
		}
	}

	return fmt.Sprintf("Recent focus on %s with %d interactions.", primary, len(recent))
}
