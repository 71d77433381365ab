package store

import "database/sql"

func (s *Store) CreateLearner(l *Learner) (*Learner, error) {
	if l.ProficiencyLevel == "" {
		l.ProficiencyLevel = ProficiencyIntermediate
	}
	if l.PreferredLanguage == "" {
		l.PreferredLanguage = "en"
	}

	result, err := s.db.Exec(`
		INSERT INTO learner_profiles (user_id, name, course_type, proficiency_level, preferred_language, learning_goals)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.UserID, l.Name, l.CourseType, l.ProficiencyLevel, l.PreferredLanguage, l.LearningGoals)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return s.GetLearner(id)
}

func (s *Store) GetLearner(id int64) (*Learner, error) {
	return s.scanLearner(s.db.QueryRow(`
		SELECT id, user_id, COALESCE(name, ''), course_type, proficiency_level, preferred_language,
		       COALESCE(learning_goals, ''), created_at, updated_at
		FROM learner_profiles WHERE id = ?`, id))
}

func (s *Store) FindLearnerByUserID(userID string) (*Learner, error) {
	return s.scanLearner(s.db.QueryRow(`
		SELECT id, user_id, COALESCE(name, ''), course_type, proficiency_level, preferred_language,
		       COALESCE(learning_goals, ''), created_at, updated_at
		FROM learner_profiles WHERE user_id = ?`, userID))
}

func (s *Store) scanLearner(row *sql.Row) (*Learner, error) {
	var l Learner
	err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.CourseType, &l.ProficiencyLevel,
		&l.PreferredLanguage, &l.LearningGoals, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrLearnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) UpdateLearner(l *Learner) error {
	result, err := s.db.Exec(`
		UPDATE learner_profiles
		SET name = ?, course_type = ?, proficiency_level = ?, preferred_language = ?,
		    learning_goals = ?, updated_at = datetime('now')
		WHERE id = ?`,
		l.Name, l.CourseType, l.ProficiencyLevel, l.PreferredLanguage, l.LearningGoals, l.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLearnerNotFound
	}
	return nil
}

func (s *Store) CountLearners() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM learner_profiles`).Scan(&count)
	return count, err
}
