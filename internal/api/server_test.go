package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MLiu666/EvoWrite/internal/agent"
	"github.com/MLiu666/EvoWrite/internal/llm"
	"github.com/MLiu666/EvoWrite/internal/memory"
	"github.com/MLiu666/EvoWrite/internal/store"
)

type stubLLM struct{ reply string }

func (s *stubLLM) Generate(ctx context.Context, systemPrompt string, messages []llm.Message, params llm.Params) (string, error) {
	return s.reply, nil
}

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mem := memory.NewStore(db.DB())
	tutor := agent.New(db, mem, &stubLLM{reply: "Here is a clear explanation. Great question!"})

	return NewServer(tutor, db, mem, nil), db
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestCreateLearner(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/learners", map[string]any{
		"user_id":     "u1",
		"course_type": "SW",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	learner := body["learner"].(map[string]any)
	if learner["proficiency_level"] != "intermediate" {
		t.Errorf("expected intermediate default, got %v", learner["proficiency_level"])
	}

	// same user again conflicts
	rec = doJSON(t, srv, http.MethodPost, "/api/learners", map[string]any{
		"user_id":     "u1",
		"course_type": "SW",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestCreateLearnerMissingFields(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/learners", map[string]any{"user_id": "u1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without course_type, got %d", rec.Code)
	}
}

func TestGetLearnerNotFound(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/learners/42", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateLearner(t *testing.T) {
	srv, db := testServer(t)
	if _, err := db.CreateLearner(&store.Learner{UserID: "u1", CourseType: "SW"}); err != nil {
		t.Fatalf("create learner: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPut, "/api/learners/1", map[string]any{
		"proficiency_level": "advanced",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	learner, err := db.GetLearner(1)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if learner.ProficiencyLevel != "advanced" {
		t.Errorf("update not applied, got %s", learner.ProficiencyLevel)
	}
}

func TestChat(t *testing.T) {
	srv, db := testServer(t)
	if _, err := db.CreateLearner(&store.Learner{UserID: "u1", CourseType: "SW"}); err != nil {
		t.Fatalf("create learner: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]any{
		"learner_id": 1,
		"message":    "What is a thesis statement?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["session_id"] == "" {
		t.Error("expected a generated session id")
	}
	if body["response"] == "" {
		t.Error("expected a response")
	}
	if body["intent"] != "Answer" {
		t.Errorf("unexpected intent %v", body["intent"])
	}
	if _, ok := body["validation"].(map[string]any); !ok {
		t.Error("expected validation block")
	}
}

func TestChatUnknownLearner(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]any{
		"learner_id": 7,
		"message":    "hello",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestFeedbackValidation(t *testing.T) {
	srv, db := testServer(t)
	if _, err := db.CreateLearner(&store.Learner{UserID: "u1", CourseType: "SW"}); err != nil {
		t.Fatalf("create learner: %v", err)
	}
	it, err := db.CreateInteraction("s1", 1, "question", "Answer", 0.5, "{}")
	if err != nil {
		t.Fatalf("create interaction: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/feedback", map[string]any{
		"interaction_id": it.ID,
		"rating":         9,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for rating 9, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/feedback", map[string]any{
		"interaction_id": it.ID,
		"rating":         4,
		"feedback_text":  "helpful",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv, db := testServer(t)
	if _, err := db.CreateLearner(&store.Learner{UserID: "u1", CourseType: "SW"}); err != nil {
		t.Fatalf("create learner: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]any{
		"learner_id":  1,
		"essay_title": "My Essay",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/sessions/1", map[string]any{
		"essay_content": "One two three four.",
		"status":        "completed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	session := body["session"].(map[string]any)
	if session["word_count"].(float64) != 4 {
		t.Errorf("expected word count 4, got %v", session["word_count"])
	}
	if session["completed_at"] == nil {
		t.Error("expected completion stamp")
	}
	if session["revision_count"].(float64) != 1 {
		t.Errorf("expected revision count 1, got %v", session["revision_count"])
	}
}

func TestAnalytics(t *testing.T) {
	srv, db := testServer(t)
	if _, err := db.CreateLearner(&store.Learner{UserID: "u1", CourseType: "SW"}); err != nil {
		t.Fatalf("create learner: %v", err)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/learners/1/analytics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if _, ok := body["personalization_data"]; !ok {
		t.Error("expected personalization_data")
	}
	if _, ok := body["validation_summary"]; !ok {
		t.Error("expected validation_summary")
	}
}

func TestIntents(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/intents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decode(t, rec)
	intents := body["intent_types"].([]any)
	if len(intents) != 12 {
		t.Errorf("expected 12 intent types, got %d", len(intents))
	}
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/system/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decode(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("unexpected status %v", body["status"])
	}
	if _, ok := body["statistics"].(map[string]any); !ok {
		t.Error("expected statistics block")
	}
}

func TestEssaysWithoutArchive(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/learners/1/essays", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without archive, got %d", rec.Code)
	}
}
