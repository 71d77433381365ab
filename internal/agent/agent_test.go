package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MLiu666/EvoWrite/internal/conversation"
	"github.com/MLiu666/EvoWrite/internal/intent"
	"github.com/MLiu666/EvoWrite/internal/llm"
	"github.com/MLiu666/EvoWrite/internal/memory"
	"github.com/MLiu666/EvoWrite/internal/store"
)

// stubLLM returns a fixed reply, or fails when err is set.
type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Generate(ctx context.Context, systemPrompt string, messages []llm.Message, params llm.Params) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testAgent(t *testing.T, model llm.LLM) (*Agent, *store.Store, *memory.Store) {
	t.Helper()

	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.CreateLearner(&store.Learner{
		UserID:     "u1",
		CourseType: store.CourseScientificWriting,
	}); err != nil {
		t.Fatalf("failed to create learner: %v", err)
	}

	mem := memory.NewStore(db.DB())
	return New(db, mem, model), db, mem
}

func TestProcessInput(t *testing.T) {
	a, db, _ := testAgent(t, &stubLLM{reply: "ok"})

	processed, err := a.ProcessInput("Can you fix the comma and spelling in my grammar exercise?", 1, "s1")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if processed.Intent != "R Language Use" {
		t.Errorf("unexpected intent %s", processed.Intent)
	}
	if processed.Confidence <= 0 || processed.Confidence > 1 {
		t.Errorf("confidence out of range: %f", processed.Confidence)
	}
	if processed.UserInput == "" {
		t.Error("expected raw input carried on processed record")
	}

	stored, err := db.GetInteraction(processed.InteractionID)
	if err != nil {
		t.Fatalf("interaction not persisted: %v", err)
	}
	if stored.IntentType == nil || *stored.IntentType != "R Language Use" {
		t.Errorf("intent not stored: %v", stored.IntentType)
	}
	if stored.ContextData == nil || !strings.Contains(*stored.ContextData, `"word_count"`) {
		t.Error("context snapshot not stored")
	}
}

func TestProcessInputUnknownLearner(t *testing.T) {
	a, _, _ := testAgent(t, &stubLLM{reply: "ok"})

	_, err := a.ProcessInput("hello", 99, "s1")
	if !errors.Is(err, store.ErrLearnerNotFound) {
		t.Errorf("expected ErrLearnerNotFound, got %v", err)
	}
}

func TestGenerateAndValidate(t *testing.T) {
	model := &stubLLM{reply: "Here is a clear explanation with examples provided. Great work so far!"}
	a, db, _ := testAgent(t, model)

	processed, err := a.ProcessInput("What is a topic sentence?", 1, "s1")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	result, err := a.GenerateAndValidate(context.Background(), processed)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if model.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", model.calls)
	}
	if !result.Personalized {
		t.Error("backend response should be personalized")
	}
	if !strings.Contains(result.ResponseText, "**Learning Strategy Tip:**") {
		t.Error("expected an SRL strategy tip appended")
	}
	if result.SRLStrategy == "" {
		t.Error("expected a selected strategy")
	}
	if result.Validation == nil {
		t.Fatal("expected validation result")
	}

	stored, err := db.GetInteraction(processed.InteractionID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.AssistantResponse == nil {
		t.Error("response not stored")
	}
	if stored.CheckerValidation == nil {
		t.Error("validation not stored")
	}
	if stored.CompletedAt == nil {
		t.Error("interaction not completed")
	}
}

// The first turn ever has no prior responses, so consistency must be the
// vacuous 1.0 even though the turn's own response is stored by the time the
// caller sees the result.
func TestFirstTurnConsistencyVacuous(t *testing.T) {
	model := &stubLLM{reply: "Here is a clear explanation with examples provided. Great work so far!"}
	a, _, _ := testAgent(t, model)

	processed, err := a.ProcessInput("What is a topic sentence?", 1, "s1")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	result, err := a.GenerateAndValidate(context.Background(), processed)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if result.Validation.OverallConsistency != 1.0 {
		t.Errorf("expected vacuous consistency 1.0 on first turn, got %f",
			result.Validation.OverallConsistency)
	}
}

func TestGenerateFallsBackWhenUnavailable(t *testing.T) {
	model := &stubLLM{err: fmt.Errorf("%w: connection refused", llm.ErrGenerationUnavailable)}
	a, _, _ := testAgent(t, model)

	processed, err := a.ProcessInput("Please revise and improve my draft", 1, "s1")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	result, err := a.GenerateAndValidate(context.Background(), processed)
	if err != nil {
		t.Fatalf("fallback path should not error: %v", err)
	}

	if result.Personalized {
		t.Error("fallback response must not be marked personalized")
	}
	if !strings.Contains(result.ResponseText, fallbackResponse(processed.Intent)) {
		t.Errorf("expected canned fallback in %q", result.ResponseText)
	}
	if !strings.Contains(result.ResponseText, "**Learning Strategy Tip:**") {
		t.Error("strategy tip should still be appended to fallbacks")
	}
}

func TestGenerateSurfacesHardErrors(t *testing.T) {
	model := &stubLLM{err: errors.New("boom")}
	a, _, _ := testAgent(t, model)

	processed, err := a.ProcessInput("hello there", 1, "s1")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if _, err := a.GenerateAndValidate(context.Background(), processed); err == nil {
		t.Error("non-availability errors must propagate")
	}
}

func TestSubmitFeedback(t *testing.T) {
	a, db, mem := testAgent(t, &stubLLM{reply: "ok"})

	it, err := db.CreateInteraction("s1", 1, "question", "Answer", 0.5, "{}")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := a.SubmitFeedback(it.ID, 0, ""); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for 0, got %v", err)
	}
	if err := a.SubmitFeedback(it.ID, 6, ""); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for 6, got %v", err)
	}
	if err := a.SubmitFeedback(99, 3, ""); !errors.Is(err, store.ErrInteractionNotFound) {
		t.Errorf("expected ErrInteractionNotFound, got %v", err)
	}

	if err := a.SubmitFeedback(it.ID, 5, "very helpful session"); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}

	stored, _ := db.GetInteraction(it.ID)
	if stored.UserRating == nil || *stored.UserRating != 5 {
		t.Error("rating not stored")
	}

	records, err := mem.Retrieve(1, "feedback", memory.LongTerm, 10)
	if err != nil {
		t.Fatalf("memory retrieve failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 feedback memory, got %d", len(records))
	}
	if records[0].ImportanceScore != 1.0 {
		t.Errorf("rating 5 should give importance 1.0, got %f", records[0].ImportanceScore)
	}
}

func TestFeedbackWithoutTextSkipsMemory(t *testing.T) {
	a, db, mem := testAgent(t, &stubLLM{reply: "ok"})

	it, _ := db.CreateInteraction("s1", 1, "question", "Answer", 0.5, "{}")
	if err := a.SubmitFeedback(it.ID, 4, ""); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}

	count, err := mem.CountByLearner(1)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no memory without feedback text, got %d", count)
	}
}

func TestMultilingualInputFlipsLanguagePreference(t *testing.T) {
	a, db, _ := testAgent(t, &stubLLM{reply: "ok"})

	if _, err := a.ProcessInput("帮我看看这个句子 please", 1, "s1"); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	profile, err := db.GetLearner(1)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if profile.PreferredLanguage != "mixed" {
		t.Errorf("expected mixed preference, got %s", profile.PreferredLanguage)
	}
}

func TestPersonalizationData(t *testing.T) {
	a, db, _ := testAgent(t, &stubLLM{reply: "ok"})

	empty, err := a.PersonalizationData(1)
	if err != nil {
		t.Fatalf("empty stats failed: %v", err)
	}
	if empty.InteractionCount != 0 {
		t.Errorf("expected 0 interactions, got %d", empty.InteractionCount)
	}

	for i := 0; i < 3; i++ {
		it, err := db.CreateInteraction("s1", 1, "hello world", "Answer", 0.5, "{}")
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := db.SetRating(it.ID, 4); err != nil {
			t.Fatalf("rating failed: %v", err)
		}
	}
	if _, err := db.CreateInteraction("s2", 1, "fix grammar", "R Language Use", 0.8, "{}"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stats, err := a.PersonalizationData(1)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.InteractionCount != 4 {
		t.Errorf("expected 4 interactions, got %d", stats.InteractionCount)
	}
	if stats.AvgRating != 4.0 {
		t.Errorf("expected avg rating 4.0, got %f", stats.AvgRating)
	}
	if stats.SessionCount != 2 {
		t.Errorf("expected 2 sessions, got %d", stats.SessionCount)
	}
	if len(stats.PreferredIntents) == 0 || stats.PreferredIntents[0] != "Answer" {
		t.Errorf("expected Answer as top intent, got %v", stats.PreferredIntents)
	}
	if stats.RecentActivity != 4 {
		t.Errorf("expected all interactions recent, got %d", stats.RecentActivity)
	}
}

func TestPersonalizationAvgLengthCountsRunes(t *testing.T) {
	a, db, _ := testAgent(t, &stubLLM{reply: "ok"})

	// ten characters each, regardless of encoding width
	for _, input := range []string{"abcdefghij", "这个句子一共有十个字"} {
		if _, err := db.CreateInteraction("s1", 1, input, "Answer", 0.5, "{}"); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	stats, err := a.PersonalizationData(1)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.AvgInputLength != 10 {
		t.Errorf("expected avg input length 10, got %f", stats.AvgInputLength)
	}
}

func TestPersonalizeBeginner(t *testing.T) {
	profile := &store.Learner{
		ProficiencyLevel: store.ProficiencyBeginner,
		CourseType:       store.CourseScientificWriting,
	}

	out := personalize("You should utilize examples to demonstrate your point.", profile)

	if strings.Contains(out, "utilize") || strings.Contains(out, "demonstrate") {
		t.Errorf("beginner vocabulary not simplified: %q", out)
	}
	if !strings.Contains(out, "scientific writing") {
		t.Errorf("expected course note appended: %q", out)
	}
}

func TestSelectStrategy(t *testing.T) {
	newLearner := &conversation.State{InteractionCount: 2}
	if got := selectStrategy(intent.Revision, newLearner); got != srlStrategies["motivational"][0] {
		t.Errorf("new learner should get a motivational tip, got %q", got)
	}

	// no ratings averages to 0, which counts as struggling
	unrated := &conversation.State{InteractionCount: 6}
	if got := selectStrategy(intent.Answer, unrated); got != srlStrategies["social_behavioral"][0] {
		t.Errorf("unrated learner should get a social-behavioral tip, got %q", got)
	}

	struggling := &conversation.State{InteractionCount: 6, RecentRatings: []int{2, 2, 3}}
	if got := selectStrategy(intent.Answer, struggling); got != srlStrategies["social_behavioral"][0] {
		t.Errorf("low-rated learner should get a social-behavioral tip, got %q", got)
	}

	settled := &conversation.State{InteractionCount: 6, RecentRatings: []int{4, 5}}
	if got := selectStrategy(intent.Revision, settled); got != srlStrategies["metacognitive"][0] {
		t.Errorf("settled learner should get the intent focus tip, got %q", got)
	}
}
