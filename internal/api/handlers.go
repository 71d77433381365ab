package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MLiu666/EvoWrite/internal/agent"
	"github.com/MLiu666/EvoWrite/internal/intent"
	"github.com/MLiu666/EvoWrite/internal/logger"
	"github.com/MLiu666/EvoWrite/internal/store"
)

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) handleCreateLearner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID            string `json:"user_id"`
		Name              string `json:"name"`
		CourseType        string `json:"course_type"`
		ProficiencyLevel  string `json:"proficiency_level"`
		PreferredLanguage string `json:"preferred_language"`
		LearningGoals     string `json:"learning_goals"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: user_id")
		return
	}
	if req.CourseType == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: course_type")
		return
	}

	if _, err := s.store.FindLearnerByUserID(req.UserID); err == nil {
		writeError(w, http.StatusConflict, "Learner already exists")
		return
	} else if !errors.Is(err, store.ErrLearnerNotFound) {
		s.internalError(w, "learner lookup", err)
		return
	}

	learner, err := s.store.CreateLearner(&store.Learner{
		UserID:            req.UserID,
		Name:              req.Name,
		CourseType:        req.CourseType,
		ProficiencyLevel:  req.ProficiencyLevel,
		PreferredLanguage: req.PreferredLanguage,
		LearningGoals:     req.LearningGoals,
	})
	if err != nil {
		s.internalError(w, "learner create", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Learner profile created successfully",
		"learner": viewLearner(learner),
	})
}

func (s *Server) handleGetLearner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid learner id")
		return
	}

	learner, err := s.store.GetLearner(id)
	if errors.Is(err, store.ErrLearnerNotFound) {
		writeError(w, http.StatusNotFound, "Learner not found")
		return
	}
	if err != nil {
		s.internalError(w, "learner get", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"learner": viewLearner(learner)})
}

func (s *Server) handleUpdateLearner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid learner id")
		return
	}

	learner, err := s.store.GetLearner(id)
	if errors.Is(err, store.ErrLearnerNotFound) {
		writeError(w, http.StatusNotFound, "Learner not found")
		return
	}
	if err != nil {
		s.internalError(w, "learner get", err)
		return
	}

	var req struct {
		Name              *string `json:"name"`
		CourseType        *string `json:"course_type"`
		ProficiencyLevel  *string `json:"proficiency_level"`
		PreferredLanguage *string `json:"preferred_language"`
		LearningGoals     *string `json:"learning_goals"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name != nil {
		learner.Name = *req.Name
	}
	if req.CourseType != nil {
		learner.CourseType = *req.CourseType
	}
	if req.ProficiencyLevel != nil {
		learner.ProficiencyLevel = *req.ProficiencyLevel
	}
	if req.PreferredLanguage != nil {
		learner.PreferredLanguage = *req.PreferredLanguage
	}
	if req.LearningGoals != nil {
		learner.LearningGoals = *req.LearningGoals
	}

	if err := s.store.UpdateLearner(learner); err != nil {
		s.internalError(w, "learner update", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Learner profile updated successfully",
		"learner": viewLearner(learner),
	})
}

// handleChat runs one full pipeline turn: process the input, generate a
// response, validate it and return everything the client needs to render
// the turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LearnerID int64  `json:"learner_id"`
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.LearnerID == 0 {
		writeError(w, http.StatusBadRequest, "Missing required field: learner_id")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: message")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	processed, err := s.agent.ProcessInput(req.Message, req.LearnerID, sessionID)
	if errors.Is(err, store.ErrLearnerNotFound) {
		writeError(w, http.StatusNotFound, "Learner not found")
		return
	}
	if err != nil {
		s.internalError(w, "process input", err)
		return
	}

	result, err := s.agent.GenerateAndValidate(r.Context(), processed)
	if err != nil {
		s.internalError(w, "generate response", err)
		return
	}

	resp := map[string]any{
		"session_id":     sessionID,
		"interaction_id": processed.InteractionID,
		"intent":         processed.Intent,
		"confidence":     processed.Confidence,
		"response":       result.ResponseText,
		"srl_suggestion": result.SRLStrategy,
		"personalized":   result.Personalized,
		"validation": map[string]any{
			"approved":      result.Validation.Approved,
			"overall_score": result.Validation.OverallScore,
		},
	}
	if !result.Validation.Approved {
		resp["warnings"] = result.Validation.Recommendations
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InteractionID int64  `json:"interaction_id"`
		Rating        int    `json:"rating"`
		FeedbackText  string `json:"feedback_text"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.InteractionID == 0 {
		writeError(w, http.StatusBadRequest, "Missing required field: interaction_id")
		return
	}

	err := s.agent.SubmitFeedback(req.InteractionID, req.Rating, req.FeedbackText)
	switch {
	case errors.Is(err, agent.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, "Rating must be an integer between 1 and 5")
		return
	case errors.Is(err, store.ErrInteractionNotFound):
		writeError(w, http.StatusNotFound, "Interaction not found")
		return
	case err != nil:
		s.internalError(w, "submit feedback", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback submitted successfully"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LearnerID   int64  `json:"learner_id"`
		EssayTitle  string `json:"essay_title"`
		WritingGoal string `json:"writing_goal"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.LearnerID == 0 {
		writeError(w, http.StatusBadRequest, "Missing required field: learner_id")
		return
	}

	if _, err := s.store.GetLearner(req.LearnerID); err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			writeError(w, http.StatusNotFound, "Learner not found")
			return
		}
		s.internalError(w, "learner get", err)
		return
	}

	session, err := s.store.CreateWritingSession(&store.WritingSession{
		LearnerID:   req.LearnerID,
		SessionID:   uuid.NewString(),
		EssayTitle:  req.EssayTitle,
		WritingGoal: req.WritingGoal,
	})
	if err != nil {
		s.internalError(w, "session create", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Writing session created successfully",
		"session": viewSession(session),
	})
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	session, err := s.store.GetWritingSession(id)
	if errors.Is(err, store.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "Writing session not found")
		return
	}
	if err != nil {
		s.internalError(w, "session get", err)
		return
	}

	var req struct {
		EssayTitle   *string `json:"essay_title"`
		EssayContent *string `json:"essay_content"`
		WritingGoal  *string `json:"writing_goal"`
		Status       *string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.EssayTitle != nil {
		session.EssayTitle = *req.EssayTitle
	}
	if req.EssayContent != nil && *req.EssayContent != session.EssayContent {
		session.EssayContent = *req.EssayContent
		session.RevisionCount++
	}
	if req.WritingGoal != nil {
		session.WritingGoal = *req.WritingGoal
	}
	if req.Status != nil {
		session.Status = *req.Status
	}

	if err := s.store.UpdateWritingSession(session); err != nil {
		s.internalError(w, "session update", err)
		return
	}

	// reload to pick up the recomputed word count and completion stamp
	session, err = s.store.GetWritingSession(id)
	if err != nil {
		s.internalError(w, "session get", err)
		return
	}

	if session.Status == "completed" && s.archive != nil {
		if name, err := s.archive.ArchiveEssay(r.Context(), session); err != nil {
			logger.Warn("essay archive failed", "session", session.ID, "error", err)
		} else {
			logger.Info("essay archived", "session", session.ID, "object", name)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Writing session updated successfully",
		"session": viewSession(session),
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid learner id")
		return
	}

	if _, err := s.store.GetLearner(id); err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			writeError(w, http.StatusNotFound, "Learner not found")
			return
		}
		s.internalError(w, "learner get", err)
		return
	}

	stats, err := s.agent.PersonalizationData(id)
	if err != nil {
		s.internalError(w, "personalization data", err)
		return
	}

	summary, err := s.agent.GetValidationSummary(id, 30)
	if err != nil {
		s.internalError(w, "validation summary", err)
		return
	}

	sessions, err := s.store.WritingSessionsByLearner(id)
	if err != nil {
		s.internalError(w, "sessions list", err)
		return
	}

	completed := 0
	for _, ws := range sessions {
		if ws.Status == "completed" {
			completed++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"validation_summary":   summary,
		"personalization_data": stats,
		"recent_activity": map[string]any{
			"total_interactions": stats.InteractionCount,
			"recent_sessions":    len(sessions),
			"completed_essays":   completed,
		},
	})
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid learner id")
		return
	}

	if _, err := s.store.GetLearner(id); err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			writeError(w, http.StatusNotFound, "Learner not found")
			return
		}
		s.internalError(w, "learner get", err)
		return
	}

	limit := queryInt(r, "limit", 50)
	sessionID := r.URL.Query().Get("session_id")

	interactions, err := s.store.ListByLearner(id, sessionID, limit)
	if err != nil {
		s.internalError(w, "interactions list", err)
		return
	}

	views := make([]interactionView, 0, len(interactions))
	for _, it := range interactions {
		views = append(views, viewInteraction(it))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"interactions": views,
		"total_count":  len(views),
	})
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid learner id")
		return
	}

	if _, err := s.store.GetLearner(id); err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			writeError(w, http.StatusNotFound, "Learner not found")
			return
		}
		s.internalError(w, "learner get", err)
		return
	}

	memoryType := r.URL.Query().Get("memory_type")
	limit := queryInt(r, "limit", 20)

	records, err := s.memory.Retrieve(id, "", memoryType, limit)
	if err != nil {
		s.internalError(w, "memory retrieve", err)
		return
	}

	views := make([]memoryView, 0, len(records))
	for _, rec := range records {
		views = append(views, viewMemory(rec))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"memories":    views,
		"total_count": len(views),
	})
}

func (s *Server) handleEssays(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "Essay archive not configured")
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid learner id")
		return
	}

	names, err := s.archive.ListEssays(r.Context(), id)
	if err != nil {
		s.internalError(w, "essay list", err)
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"essays":      names,
		"total_count": len(names),
	})
}

func (s *Server) handleIntents(w http.ResponseWriter, r *http.Request) {
	type intentView struct {
		Value       string `json:"value"`
		Description string `json:"description"`
	}

	all := intent.All()
	views := make([]intentView, 0, len(all))
	for _, it := range all {
		views = append(views, intentView{
			Value:       string(it),
			Description: fmt.Sprintf("Intent type for %s requests", strings.ToLower(string(it))),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"intent_types": views})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	logger.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
