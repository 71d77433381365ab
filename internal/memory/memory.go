// Package memory holds decaying, importance-weighted notes per learner.
// Retention follows a simple Ebbinghaus-style forgetting curve: a pure
// function of importance and age, recomputed whenever a record is retrieved.
package memory

import (
	"database/sql"
	"time"
)

// Memory categories.
const (
	ShortTerm = "short_term"
	LongTerm  = "long_term"
	Episodic  = "episodic"
)

const defaultLimit = 10

type Record struct {
	ID                int64
	LearnerID         int64
	MemoryKey         string
	MemoryType        string
	Content           string
	ImportanceScore   float64
	AccessCount       int
	LastAccessed      time.Time
	RetentionStrength float64
	CreatedAt         time.Time
}

type Store struct {
	db *sql.DB
}

// NewStore creates a memory store on an already-open database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Retention computes retention strength for a given importance and age.
// Decay is keyed to time since creation, not time since last access.
func Retention(importance float64, age time.Duration) float64 {
	ageDays := age.Hours() / 24
	return importance * (1 / (1 + 0.1*ageDays))
}

// Save appends a new memory record. Keys are not deduplicated; repeated
// stores under the same key accumulate.
func (s *Store) Save(learnerID int64, key, content, memoryType string, importance float64) (*Record, error) {
	if memoryType == "" {
		memoryType = ShortTerm
	}

	result, err := s.db.Exec(`
		INSERT INTO agent_memory (learner_id, memory_key, memory_type, content, importance_score, retention_strength)
		VALUES (?, ?, ?, ?, ?, ?)`,
		learnerID, key, memoryType, content, importance, importance)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return s.get(id)
}

func (s *Store) get(id int64) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT id, learner_id, memory_key, memory_type, content, importance_score,
		       access_count, last_accessed, retention_strength, created_at
		FROM agent_memory WHERE id = ?`, id)

	var r Record
	err := row.Scan(&r.ID, &r.LearnerID, &r.MemoryKey, &r.MemoryType, &r.Content,
		&r.ImportanceScore, &r.AccessCount, &r.LastAccessed, &r.RetentionStrength, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Retrieve returns up to limit records for a learner, filtered by key
// substring and exact memory type when given, ranked by importance then
// recency of access. Retrieval is not read-only: every returned record has
// its access count bumped and its retention strength recomputed.
func (s *Store) Retrieve(learnerID int64, key, memoryType string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `
		SELECT id, learner_id, memory_key, memory_type, content, importance_score,
		       access_count, last_accessed, retention_strength, created_at
		FROM agent_memory WHERE learner_id = ?`
	args := []any{learnerID}

	if key != "" {
		query += ` AND memory_key LIKE ?`
		args = append(args, "%"+key+"%")
	}
	if memoryType != "" {
		query += ` AND memory_type = ?`
		args = append(args, memoryType)
	}

	query += ` ORDER BY importance_score DESC, last_accessed DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}

	var records []*Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.LearnerID, &r.MemoryKey, &r.MemoryType, &r.Content,
			&r.ImportanceScore, &r.AccessCount, &r.LastAccessed, &r.RetentionStrength, &r.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, &r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, r := range records {
		if err := s.touch(r, now); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// touch records one access: bumps the counter, stamps last_accessed and
// stores the freshly computed retention strength.
func (s *Store) touch(r *Record, now time.Time) error {
	r.AccessCount++
	r.LastAccessed = now
	r.RetentionStrength = Retention(r.ImportanceScore, now.Sub(r.CreatedAt))

	_, err := s.db.Exec(`
		UPDATE agent_memory
		SET access_count = access_count + 1,
		    last_accessed = datetime('now'),
		    retention_strength = importance_score * (1.0 / (1.0 + 0.1 * (julianday('now') - julianday(created_at))))
		WHERE id = ?`, r.ID)
	return err
}

// DecaySweep recomputes the stored retention strength for every record of
// every learner using the same formula as access-time recomputation. Access
// counts and last_accessed are untouched. Returns the number of rows swept.
func (s *Store) DecaySweep() (int64, error) {
	result, err := s.db.Exec(`
		UPDATE agent_memory
		SET retention_strength = importance_score * (1.0 / (1.0 + 0.1 * (julianday('now') - julianday(created_at))))`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountByLearner reports how many memory records a learner holds.
func (s *Store) CountByLearner(learnerID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM agent_memory WHERE learner_id = ?`, learnerID).Scan(&count)
	return count, err
}
