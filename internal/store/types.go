package store

import "time"

// Course tracks offered by the writing program.
const (
	CourseScientificWriting = "SW"
	CourseAdvancedWriting   = "AW"
	CourseIntegratedReading = "IRW"
)

// Proficiency tiers.
const (
	ProficiencyBeginner     = "beginner"
	ProficiencyIntermediate = "intermediate"
	ProficiencyAdvanced     = "advanced"
)

type Learner struct {
	ID                int64
	UserID            string
	Name              string
	CourseType        string
	ProficiencyLevel  string
	PreferredLanguage string
	LearningGoals     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Interaction is one turn of the tutoring pipeline. Intent and confidence
// are fixed at creation; response, validation, rating and completion arrive
// from later stages.
type Interaction struct {
	ID                int64
	SessionID         string
	LearnerID         int64
	UserInput         string
	AssistantResponse *string
	CheckerValidation *string
	IntentType        *string
	ConfidenceScore   float64
	UserRating        *int
	ContextData       *string
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

type WritingSession struct {
	ID               int64
	LearnerID        int64
	SessionID        string
	EssayTitle       string
	EssayContent     string
	WritingGoal      string
	WordCount        int
	RevisionCount    int
	InteractionCount int
	Status           string
	StartedAt        time.Time
	CompletedAt      *time.Time
}
