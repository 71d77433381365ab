package agent

import (
	"errors"
	"time"

	"github.com/MLiu666/EvoWrite/internal/conversation"
	"github.com/MLiu666/EvoWrite/internal/intent"
	"github.com/MLiu666/EvoWrite/internal/learner"
	"github.com/MLiu666/EvoWrite/internal/llm"
	"github.com/MLiu666/EvoWrite/internal/memory"
	"github.com/MLiu666/EvoWrite/internal/store"
	"github.com/MLiu666/EvoWrite/internal/validator"
)

// ErrInvalidRating is returned when feedback carries a rating outside 1-5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

const defaultGenerateTimeout = 30 * time.Second

const memoryRecallLimit = 5

type Agent struct {
	store      *store.Store
	memory     *memory.Store
	aggregator *conversation.Aggregator
	validator  *validator.Validator
	model      llm.LLM
	genTimeout time.Duration
}

// ProcessedInput is everything the generation stage needs about one turn.
// The context snapshot is copied into the interaction row at creation time.
type ProcessedInput struct {
	InteractionID int64                   `json:"interaction_id"`
	UserInput     string                  `json:"-"`
	Intent        intent.Intent           `json:"intent"`
	Confidence    float64                 `json:"confidence"`
	Context       learner.ContextFeatures `json:"context"`
	State         *conversation.State     `json:"conversation_state"`
	Learner       *store.Learner          `json:"-"`
	Memories      []*memory.Record        `json:"-"`
}

// GenerateResult is the outcome of the generation + validation stage.
type GenerateResult struct {
	ResponseText string            `json:"response"`
	SRLStrategy  string            `json:"srl_suggestion"`
	Personalized bool              `json:"personalized"`
	Validation   *validator.Result `json:"validation"`
}

// contextSnapshot is the serialized form persisted on the interaction.
type contextSnapshot struct {
	learner.ContextFeatures
	*conversation.State
	Memories []memorySnapshot `json:"memories"`
}

type memorySnapshot struct {
	MemoryKey         string  `json:"memory_key"`
	MemoryType        string  `json:"memory_type"`
	Content           string  `json:"content"`
	ImportanceScore   float64 `json:"importance_score"`
	RetentionStrength float64 `json:"retention_strength"`
}

func snapshotMemories(records []*memory.Record) []memorySnapshot {
	snaps := make([]memorySnapshot, 0, len(records))
	for _, r := range records {
		snaps = append(snaps, memorySnapshot{
			MemoryKey:         r.MemoryKey,
			MemoryType:        r.MemoryType,
			Content:           r.Content,
			ImportanceScore:   r.ImportanceScore,
			RetentionStrength: r.RetentionStrength,
		})
	}
	return snaps
}
