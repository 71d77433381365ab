package store

import (
	"database/sql"
	"strings"
)

const sessionColumns = `id, learner_id, session_id, COALESCE(essay_title, ''),
	COALESCE(essay_content, ''), COALESCE(writing_goal, ''), word_count,
	revision_count, interaction_count, status, started_at, completed_at`

func (s *Store) CreateWritingSession(ws *WritingSession) (*WritingSession, error) {
	if ws.Status == "" {
		ws.Status = "active"
	}

	result, err := s.db.Exec(`
		INSERT INTO writing_sessions (learner_id, session_id, essay_title, essay_content, writing_goal, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ws.LearnerID, ws.SessionID, ws.EssayTitle, ws.EssayContent, ws.WritingGoal, ws.Status)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return s.GetWritingSession(id)
}

func (s *Store) GetWritingSession(id int64) (*WritingSession, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM writing_sessions WHERE id = ?`, id)
	return scanWritingSession(row)
}

// UpdateWritingSession persists mutable session fields. Word count tracks
// the essay content; completing a session stamps completed_at and bumps the
// revision count when content changed.
func (s *Store) UpdateWritingSession(ws *WritingSession) error {
	ws.WordCount = len(strings.Fields(ws.EssayContent))

	completedClause := ""
	if ws.Status == "completed" {
		completedClause = ", completed_at = datetime('now')"
	}

	result, err := s.db.Exec(`
		UPDATE writing_sessions
		SET essay_title = ?, essay_content = ?, writing_goal = ?, status = ?,
		    word_count = ?, revision_count = ?, interaction_count = ?`+completedClause+`
		WHERE id = ?`,
		ws.EssayTitle, ws.EssayContent, ws.WritingGoal, ws.Status,
		ws.WordCount, ws.RevisionCount, ws.InteractionCount, ws.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *Store) WritingSessionsByLearner(learnerID int64) ([]*WritingSession, error) {
	rows, err := s.db.Query(`
		SELECT `+sessionColumns+` FROM writing_sessions
		WHERE learner_id = ? ORDER BY started_at DESC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*WritingSession
	for rows.Next() {
		ws, err := scanWritingSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, ws)
	}

	return sessions, rows.Err()
}

func (s *Store) CountWritingSessions() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM writing_sessions`).Scan(&count)
	return count, err
}

func scanWritingSession(row rowScanner) (*WritingSession, error) {
	var ws WritingSession
	var completedAt sql.NullTime

	err := row.Scan(&ws.ID, &ws.LearnerID, &ws.SessionID, &ws.EssayTitle,
		&ws.EssayContent, &ws.WritingGoal, &ws.WordCount, &ws.RevisionCount,
		&ws.InteractionCount, &ws.Status, &ws.StartedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		ws.CompletedAt = &completedAt.Time
	}

	return &ws, nil
}
