package store

import (
	"database/sql"
	"time"
)

const interactionColumns = `id, session_id, learner_id, user_input, assistant_response,
	checker_validation, intent_type, confidence_score, user_rating, context_data,
	created_at, completed_at`

// CreateInteraction records a new turn. Intent and confidence are written
// here and never changed afterwards.
func (s *Store) CreateInteraction(sessionID string, learnerID int64, userInput, intentType string, confidence float64, contextData string) (*Interaction, error) {
	result, err := s.db.Exec(`
		INSERT INTO interactions (session_id, learner_id, user_input, intent_type, confidence_score, context_data)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, learnerID, userInput, intentType, confidence, contextData)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return s.GetInteraction(id)
}

func (s *Store) GetInteraction(id int64) (*Interaction, error) {
	row := s.db.QueryRow(`SELECT `+interactionColumns+` FROM interactions WHERE id = ?`, id)

	it, err := scanInteraction(row)
	if err == sql.ErrNoRows {
		return nil, ErrInteractionNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Store) SetResponse(id int64, response string) error {
	return s.execOnInteraction(`UPDATE interactions SET assistant_response = ? WHERE id = ?`, response, id)
}

// SetValidation stores the serialized validation record. The record is
// written at most once; a second call is a no-op.
func (s *Store) SetValidation(id int64, validation string) error {
	result, err := s.db.Exec(`
		UPDATE interactions SET checker_validation = ? WHERE id = ? AND checker_validation IS NULL`,
		validation, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := s.GetInteraction(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SetRating(id int64, rating int) error {
	return s.execOnInteraction(`
		UPDATE interactions SET user_rating = ?, completed_at = datetime('now') WHERE id = ?`, rating, id)
}

func (s *Store) MarkCompleted(id int64) error {
	return s.execOnInteraction(`
		UPDATE interactions SET completed_at = datetime('now') WHERE id = ?`, id)
}

func (s *Store) execOnInteraction(query string, args ...any) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInteractionNotFound
	}
	return nil
}

// RecentBySession returns the newest interactions for a session, newest first.
func (s *Store) RecentBySession(sessionID string, learnerID int64, limit int) ([]*Interaction, error) {
	return s.queryInteractions(`
		SELECT `+interactionColumns+` FROM interactions
		WHERE session_id = ? AND learner_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`,
		sessionID, learnerID, limit)
}

// RecentResponded returns the newest interactions that already carry an
// assistant response, newest first. Used for consistency checking.
func (s *Store) RecentResponded(learnerID int64, limit int) ([]*Interaction, error) {
	return s.queryInteractions(`
		SELECT `+interactionColumns+` FROM interactions
		WHERE learner_id = ? AND assistant_response IS NOT NULL
		ORDER BY created_at DESC, id DESC LIMIT ?`,
		learnerID, limit)
}

// ListByLearner returns interaction history, newest first. sessionID narrows
// to one session when non-empty.
func (s *Store) ListByLearner(learnerID int64, sessionID string, limit int) ([]*Interaction, error) {
	if sessionID != "" {
		return s.queryInteractions(`
			SELECT `+interactionColumns+` FROM interactions
			WHERE learner_id = ? AND session_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?`,
			learnerID, sessionID, limit)
	}
	return s.queryInteractions(`
		SELECT `+interactionColumns+` FROM interactions
		WHERE learner_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`,
		learnerID, limit)
}

// AllByLearner returns the full history, oldest first.
func (s *Store) AllByLearner(learnerID int64) ([]*Interaction, error) {
	return s.queryInteractions(`
		SELECT `+interactionColumns+` FROM interactions
		WHERE learner_id = ? ORDER BY created_at ASC, id ASC`, learnerID)
}

// ValidatedSince returns interactions with stored validation records created
// on or after cutoff.
func (s *Store) ValidatedSince(learnerID int64, cutoff time.Time) ([]*Interaction, error) {
	return s.queryInteractions(`
		SELECT `+interactionColumns+` FROM interactions
		WHERE learner_id = ? AND checker_validation IS NOT NULL AND created_at >= ?
		ORDER BY created_at DESC, id DESC`,
		learnerID, sqliteTime(cutoff))
}

func (s *Store) CountInteractions() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM interactions`).Scan(&count)
	return count, err
}

func (s *Store) CountInteractionsSince(cutoff time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM interactions WHERE created_at >= ?`, sqliteTime(cutoff)).Scan(&count)
	return count, err
}

// sqliteTime renders a timestamp in the same text form datetime('now')
// writes, so comparisons against stored columns stay lexicographic.
func sqliteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func (s *Store) queryInteractions(query string, args ...any) ([]*Interaction, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []*Interaction
	for rows.Next() {
		it, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, it)
	}

	return interactions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInteraction(row rowScanner) (*Interaction, error) {
	var it Interaction
	var response, validation, intentType, contextData sql.NullString
	var rating sql.NullInt64
	var completedAt sql.NullTime

	err := row.Scan(&it.ID, &it.SessionID, &it.LearnerID, &it.UserInput,
		&response, &validation, &intentType, &it.ConfidenceScore,
		&rating, &contextData, &it.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if response.Valid {
		it.AssistantResponse = &response.String
	}
	if validation.Valid {
		it.CheckerValidation = &validation.String
	}
	if intentType.Valid {
		it.IntentType = &intentType.String
	}
	if rating.Valid {
		r := int(rating.Int64)
		it.UserRating = &r
	}
	if contextData.Valid {
		it.ContextData = &contextData.String
	}
	if completedAt.Valid {
		it.CompletedAt = &completedAt.Time
	}

	return &it, nil
}
