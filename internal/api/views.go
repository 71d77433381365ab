package api

import (
	"encoding/json"
	"time"

	"github.com/MLiu666/EvoWrite/internal/memory"
	"github.com/MLiu666/EvoWrite/internal/store"
)

// JSON views over storage types. Timestamps render as RFC 3339; absent
// optional fields render as null.

type learnerView struct {
	ID                int64  `json:"id"`
	UserID            string `json:"user_id"`
	Name              string `json:"name"`
	CourseType        string `json:"course_type"`
	ProficiencyLevel  string `json:"proficiency_level"`
	PreferredLanguage string `json:"preferred_language"`
	LearningGoals     string `json:"learning_goals"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

func viewLearner(l *store.Learner) learnerView {
	return learnerView{
		ID:                l.ID,
		UserID:            l.UserID,
		Name:              l.Name,
		CourseType:        l.CourseType,
		ProficiencyLevel:  l.ProficiencyLevel,
		PreferredLanguage: l.PreferredLanguage,
		LearningGoals:     l.LearningGoals,
		CreatedAt:         l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         l.UpdatedAt.Format(time.RFC3339),
	}
}

type interactionView struct {
	ID                int64           `json:"id"`
	SessionID         string          `json:"session_id"`
	LearnerID         int64           `json:"learner_id"`
	UserInput         string          `json:"user_input"`
	AssistantResponse *string         `json:"assistant_response"`
	CheckerValidation json.RawMessage `json:"checker_validation"`
	IntentType        *string         `json:"intent_type"`
	ConfidenceScore   float64         `json:"confidence_score"`
	UserRating        *int            `json:"user_rating"`
	ContextData       json.RawMessage `json:"context_data"`
	CreatedAt         string          `json:"created_at"`
	CompletedAt       *string         `json:"completed_at"`
}

func viewInteraction(it *store.Interaction) interactionView {
	v := interactionView{
		ID:                it.ID,
		SessionID:         it.SessionID,
		LearnerID:         it.LearnerID,
		UserInput:         it.UserInput,
		AssistantResponse: it.AssistantResponse,
		IntentType:        it.IntentType,
		ConfidenceScore:   it.ConfidenceScore,
		UserRating:        it.UserRating,
		CreatedAt:         it.CreatedAt.Format(time.RFC3339),
	}
	if it.CheckerValidation != nil {
		v.CheckerValidation = json.RawMessage(*it.CheckerValidation)
	}
	if it.ContextData != nil {
		v.ContextData = json.RawMessage(*it.ContextData)
	}
	if it.CompletedAt != nil {
		s := it.CompletedAt.Format(time.RFC3339)
		v.CompletedAt = &s
	}
	return v
}

type sessionView struct {
	ID               int64   `json:"id"`
	LearnerID        int64   `json:"learner_id"`
	SessionID        string  `json:"session_id"`
	EssayTitle       string  `json:"essay_title"`
	EssayContent     string  `json:"essay_content"`
	WritingGoal      string  `json:"writing_goal"`
	WordCount        int     `json:"word_count"`
	RevisionCount    int     `json:"revision_count"`
	InteractionCount int     `json:"interaction_count"`
	Status           string  `json:"status"`
	StartedAt        string  `json:"started_at"`
	CompletedAt      *string `json:"completed_at"`
}

func viewSession(ws *store.WritingSession) sessionView {
	v := sessionView{
		ID:               ws.ID,
		LearnerID:        ws.LearnerID,
		SessionID:        ws.SessionID,
		EssayTitle:       ws.EssayTitle,
		EssayContent:     ws.EssayContent,
		WritingGoal:      ws.WritingGoal,
		WordCount:        ws.WordCount,
		RevisionCount:    ws.RevisionCount,
		InteractionCount: ws.InteractionCount,
		Status:           ws.Status,
		StartedAt:        ws.StartedAt.Format(time.RFC3339),
	}
	if ws.CompletedAt != nil {
		s := ws.CompletedAt.Format(time.RFC3339)
		v.CompletedAt = &s
	}
	return v
}

type memoryView struct {
	ID                int64   `json:"id"`
	LearnerID         int64   `json:"learner_id"`
	MemoryKey         string  `json:"memory_key"`
	MemoryType        string  `json:"memory_type"`
	Content           string  `json:"content"`
	ImportanceScore   float64 `json:"importance_score"`
	AccessCount       int     `json:"access_count"`
	LastAccessed      string  `json:"last_accessed"`
	RetentionStrength float64 `json:"retention_strength"`
	CreatedAt         string  `json:"created_at"`
}

func viewMemory(r *memory.Record) memoryView {
	return memoryView{
		ID:                r.ID,
		LearnerID:         r.LearnerID,
		MemoryKey:         r.MemoryKey,
		MemoryType:        r.MemoryType,
		Content:           r.Content,
		ImportanceScore:   r.ImportanceScore,
		AccessCount:       r.AccessCount,
		LastAccessed:      r.LastAccessed.Format(time.RFC3339),
		RetentionStrength: r.RetentionStrength,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
}
