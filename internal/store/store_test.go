package store

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestLearner(t *testing.T, s *Store) *Learner {
	t.Helper()

	l, err := s.CreateLearner(&Learner{
		UserID:     "u1",
		Name:       "Mina",
		CourseType: CourseScientificWriting,
	})
	if err != nil {
		t.Fatalf("failed to create learner: %v", err)
	}
	return l
}

func TestCreateLearnerDefaults(t *testing.T) {
	s := testStore(t)

	l := createTestLearner(t, s)

	if l.ProficiencyLevel != ProficiencyIntermediate {
		t.Errorf("expected intermediate default, got %s", l.ProficiencyLevel)
	}
	if l.PreferredLanguage != "en" {
		t.Errorf("expected en default, got %s", l.PreferredLanguage)
	}
	if l.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestGetLearnerNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetLearner(99)
	if !errors.Is(err, ErrLearnerNotFound) {
		t.Errorf("expected ErrLearnerNotFound, got %v", err)
	}
}

func TestFindLearnerByUserID(t *testing.T) {
	s := testStore(t)
	createTestLearner(t, s)

	l, err := s.FindLearnerByUserID("u1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if l.Name != "Mina" {
		t.Errorf("unexpected name %q", l.Name)
	}

	_, err = s.FindLearnerByUserID("missing")
	if !errors.Is(err, ErrLearnerNotFound) {
		t.Errorf("expected ErrLearnerNotFound, got %v", err)
	}
}

func TestUpdateLearner(t *testing.T) {
	s := testStore(t)
	l := createTestLearner(t, s)

	l.ProficiencyLevel = ProficiencyAdvanced
	if err := s.UpdateLearner(l); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	reloaded, err := s.GetLearner(l.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ProficiencyLevel != ProficiencyAdvanced {
		t.Errorf("expected advanced, got %s", reloaded.ProficiencyLevel)
	}

	ghost := &Learner{ID: 99, CourseType: CourseAdvancedWriting}
	if err := s.UpdateLearner(ghost); !errors.Is(err, ErrLearnerNotFound) {
		t.Errorf("expected ErrLearnerNotFound, got %v", err)
	}
}

func TestInteractionLifecycle(t *testing.T) {
	s := testStore(t)
	l := createTestLearner(t, s)

	it, err := s.CreateInteraction("s1", l.ID, "fix my grammar", "R Language Use", 0.8, `{"word_count":3}`)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if it.AssistantResponse != nil {
		t.Error("new interaction should have no response")
	}
	if it.IntentType == nil || *it.IntentType != "R Language Use" {
		t.Errorf("intent not stored: %v", it.IntentType)
	}

	if err := s.SetResponse(it.ID, "Here is the fix."); err != nil {
		t.Fatalf("set response failed: %v", err)
	}
	if err := s.SetRating(it.ID, 5); err != nil {
		t.Fatalf("set rating failed: %v", err)
	}

	reloaded, err := s.GetInteraction(it.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.AssistantResponse == nil || *reloaded.AssistantResponse != "Here is the fix." {
		t.Error("response not stored")
	}
	if reloaded.UserRating == nil || *reloaded.UserRating != 5 {
		t.Error("rating not stored")
	}
	if reloaded.CompletedAt == nil {
		t.Error("rating should stamp completion")
	}
}

func TestSetValidationWriteOnce(t *testing.T) {
	s := testStore(t)
	l := createTestLearner(t, s)

	it, err := s.CreateInteraction("s1", l.ID, "hello", "Conversation", 0.7, "{}")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.SetValidation(it.ID, `{"approved":true}`); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := s.SetValidation(it.ID, `{"approved":false}`); err != nil {
		t.Fatalf("second write should be a no-op, got %v", err)
	}

	reloaded, _ := s.GetInteraction(it.ID)
	if *reloaded.CheckerValidation != `{"approved":true}` {
		t.Errorf("validation was overwritten: %s", *reloaded.CheckerValidation)
	}

	if err := s.SetValidation(99, "{}"); !errors.Is(err, ErrInteractionNotFound) {
		t.Errorf("expected ErrInteractionNotFound, got %v", err)
	}
}

// A full validation record serializes to a few kilobytes; make sure large
// TEXT values round-trip through the driver.
func TestSetValidationLargePayload(t *testing.T) {
	s := testStore(t)
	l := createTestLearner(t, s)

	it, err := s.CreateInteraction("s1", l.ID, "hello", "Conversation", 0.7, "{}")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	payload := `{"pad":"` + strings.Repeat("x", 4096) + `"}`
	if err := s.SetValidation(it.ID, payload); err != nil {
		t.Fatalf("large write failed: %v", err)
	}

	reloaded, err := s.GetInteraction(it.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if *reloaded.CheckerValidation != payload {
		t.Errorf("large payload did not round-trip: got %d bytes", len(*reloaded.CheckerValidation))
	}
}

func TestListByLearnerSessionFilter(t *testing.T) {
	s := testStore(t)
	l := createTestLearner(t, s)

	s.CreateInteraction("s1", l.ID, "one", "Answer", 0.5, "{}")
	s.CreateInteraction("s1", l.ID, "two", "Answer", 0.5, "{}")
	s.CreateInteraction("s2", l.ID, "three", "Answer", 0.5, "{}")

	all, err := s.ListByLearner(l.ID, "", 50)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 interactions, got %d", len(all))
	}

	scoped, err := s.ListByLearner(l.ID, "s1", 50)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(scoped) != 2 {
		t.Errorf("expected 2 interactions in s1, got %d", len(scoped))
	}
}

func TestCountInteractionsSince(t *testing.T) {
	s := testStore(t)
	l := createTestLearner(t, s)

	s.CreateInteraction("s1", l.ID, "recent", "Answer", 0.5, "{}")

	count, err := s.CountInteractionsSince(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 recent interaction, got %d", count)
	}

	count, err = s.CountInteractionsSince(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 future interactions, got %d", count)
	}
}

func TestWritingSessionLifecycle(t *testing.T) {
	s := testStore(t)
	l := createTestLearner(t, s)

	ws, err := s.CreateWritingSession(&WritingSession{
		LearnerID:  l.ID,
		SessionID:  "ws-1",
		EssayTitle: "Photosynthesis",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ws.Status != "active" {
		t.Errorf("expected active default, got %s", ws.Status)
	}

	ws.EssayContent = "Plants convert light into chemical energy."
	ws.Status = "completed"
	if err := s.UpdateWritingSession(ws); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	reloaded, err := s.GetWritingSession(ws.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.WordCount != 6 {
		t.Errorf("expected word count 6, got %d", reloaded.WordCount)
	}
	if reloaded.CompletedAt == nil {
		t.Error("completed status should stamp completed_at")
	}
}

func TestWritingSessionNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetWritingSession(42)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	err = s.UpdateWritingSession(&WritingSession{ID: 42})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
