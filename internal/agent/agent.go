// Package agent orchestrates the tutoring pipeline: classify the learner's
// message, build a processed-input record, obtain a generated response and
// gate it through validation. Each request is one synchronous call chain;
// concurrent requests for the same session are not serialized here, so two
// simultaneous turns may each read the same conversation window. Consistency
// scoring is advisory, so that race is accepted rather than locked away.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MLiu666/EvoWrite/internal/conversation"
	"github.com/MLiu666/EvoWrite/internal/intent"
	"github.com/MLiu666/EvoWrite/internal/learner"
	"github.com/MLiu666/EvoWrite/internal/llm"
	"github.com/MLiu666/EvoWrite/internal/logger"
	"github.com/MLiu666/EvoWrite/internal/memory"
	"github.com/MLiu666/EvoWrite/internal/store"
	"github.com/MLiu666/EvoWrite/internal/validator"
)

func New(s *store.Store, mem *memory.Store, model llm.LLM) *Agent {
	return &Agent{
		store:      s,
		memory:     mem,
		aggregator: conversation.NewAggregator(s, 0),
		validator:  validator.New(s),
		model:      model,
		genTimeout: defaultGenerateTimeout,
	}
}

// SetGenerateTimeout overrides the generation deadline. Used by tests.
func (a *Agent) SetGenerateTimeout(d time.Duration) {
	a.genTimeout = d
}

func (a *Agent) Validator() *validator.Validator {
	return a.validator
}

// ProcessInput runs the input side of the pipeline: profile lookup, intent
// classification, context extraction, conversation aggregation and memory
// recall, then persists the interaction with intent and confidence fixed at
// creation.
func (a *Agent) ProcessInput(rawText string, learnerID int64, sessionID string) (*ProcessedInput, error) {
	profile, err := a.store.GetLearner(learnerID)
	if err != nil {
		return nil, err
	}

	classified, confidence := intent.Classify(rawText)
	features := learner.Extract(rawText, profile)

	state, err := a.aggregator.Aggregate(sessionID, learnerID)
	if err != nil {
		return nil, err
	}

	memories, err := a.memory.Retrieve(learnerID, "", "", memoryRecallLimit)
	if err != nil {
		return nil, err
	}

	snapshot := contextSnapshot{
		ContextFeatures: features,
		State:           state,
		Memories:        snapshotMemories(memories),
	}
	contextData, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	interaction, err := a.store.CreateInteraction(sessionID, learnerID, rawText,
		string(classified), confidence, string(contextData))
	if err != nil {
		return nil, err
	}

	logger.Debug("input processed", "interaction", interaction.ID,
		"intent", classified, "confidence", confidence)

	if err := a.updateProfile(profile, features); err != nil {
		logger.Warn("profile update failed", "learner", learnerID, "error", err)
	}

	return &ProcessedInput{
		InteractionID: interaction.ID,
		UserInput:     rawText,
		Intent:        classified,
		Confidence:    confidence,
		Context:       features,
		State:         state,
		Learner:       profile,
		Memories:      memories,
	}, nil
}

// GenerateAndValidate obtains a response from the generation backend and
// gates it through the validator. Backend failure is recovered locally with a
// canned per-intent fallback marked non-personalized; the interaction is
// still completed.
func (a *Agent) GenerateAndValidate(ctx context.Context, processed *ProcessedInput) (*GenerateResult, error) {
	genCtx, cancel := context.WithTimeout(ctx, a.genTimeout)
	defer cancel()

	prompt := buildPrompt(processed.Intent, processed.UserInput, processed.Learner, processed.Context)
	params := paramsFor(processed.Learner.ProficiencyLevel)

	personalized := true
	content, err := a.model.Generate(genCtx, systemPrompt,
		[]llm.Message{{Role: "user", Content: prompt}}, params)
	if err != nil {
		if !errors.Is(err, llm.ErrGenerationUnavailable) {
			return nil, err
		}
		logger.Warn("generation unavailable, using fallback",
			"interaction", processed.InteractionID, "error", err)
		content = fallbackResponse(processed.Intent)
		personalized = false
	}

	strategy := selectStrategy(processed.Intent, processed.State)
	content += "\n\n**Learning Strategy Tip:** " + strategy

	if personalized {
		content = personalize(content, processed.Learner)
	}

	// validate before storing so the consistency window only sees prior
	// turns, never the response under review
	result, err := a.validator.Validate(content, processed.Learner.ID, processed.InteractionID)
	if err != nil {
		return nil, err
	}

	if err := a.store.SetResponse(processed.InteractionID, content); err != nil {
		return nil, err
	}

	if err := a.store.MarkCompleted(processed.InteractionID); err != nil {
		return nil, err
	}

	return &GenerateResult{
		ResponseText: content,
		SRLStrategy:  strategy,
		Personalized: personalized,
		Validation:   result,
	}, nil
}

// SubmitFeedback attaches a 1-5 rating to an interaction. Feedback text, when
// given, becomes a long-term memory whose importance scales with the rating.
func (a *Agent) SubmitFeedback(interactionID int64, rating int, feedbackText string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	interaction, err := a.store.GetInteraction(interactionID)
	if err != nil {
		return err
	}

	if err := a.store.SetRating(interactionID, rating); err != nil {
		return err
	}

	if feedbackText != "" {
		_, err := a.memory.Save(interaction.LearnerID,
			fmt.Sprintf("feedback_%d", interactionID),
			feedbackText, memory.LongTerm, float64(rating)/5.0)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetValidationSummary aggregates stored validation records for a learner
// over a trailing window of days.
func (a *Agent) GetValidationSummary(learnerID int64, days int) (*validator.Summary, error) {
	if _, err := a.store.GetLearner(learnerID); err != nil {
		return nil, err
	}
	return a.validator.Summary(learnerID, days)
}

// updateProfile promotes the learner based on observed input complexity:
// multilingual input flips the language preference to mixed, and a long
// average input length moves the proficiency tier up one step.
func (a *Agent) updateProfile(profile *store.Learner, features learner.ContextFeatures) error {
	changed := false

	if features.IsMultilingual && profile.PreferredLanguage != "mixed" {
		profile.PreferredLanguage = "mixed"
		changed = true
	}

	stats, err := a.PersonalizationData(profile.ID)
	if err != nil {
		return err
	}

	if stats.AvgInputLength > 500 {
		switch profile.ProficiencyLevel {
		case store.ProficiencyBeginner:
			profile.ProficiencyLevel = store.ProficiencyIntermediate
			changed = true
		case store.ProficiencyIntermediate:
			profile.ProficiencyLevel = store.ProficiencyAdvanced
			changed = true
		}
	}

	if !changed {
		return nil
	}

	logger.Info("learner profile promoted", "learner", profile.ID,
		"proficiency", profile.ProficiencyLevel, "language", profile.PreferredLanguage)

	return a.store.UpdateLearner(profile)
}
