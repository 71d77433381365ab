package store

const schema = `
CREATE TABLE IF NOT EXISTS learner_profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL UNIQUE,
    name TEXT,
    course_type TEXT NOT NULL,
    proficiency_level TEXT NOT NULL DEFAULT 'intermediate',
    preferred_language TEXT NOT NULL DEFAULT 'en',
    learning_goals TEXT,
    created_at DATETIME DEFAULT (datetime('now')),
    updated_at DATETIME DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS interactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    learner_id INTEGER NOT NULL REFERENCES learner_profiles(id),
    user_input TEXT NOT NULL,
    assistant_response TEXT,
    checker_validation TEXT,
    intent_type TEXT,
    confidence_score REAL DEFAULT 0.0,
    user_rating INTEGER,
    context_data TEXT,
    created_at DATETIME DEFAULT (datetime('now')),
    completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id, learner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_interactions_learner ON interactions(learner_id, created_at DESC);

CREATE TABLE IF NOT EXISTS agent_memory (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    learner_id INTEGER NOT NULL REFERENCES learner_profiles(id),
    memory_key TEXT NOT NULL,
    memory_type TEXT NOT NULL DEFAULT 'short_term',
    content TEXT NOT NULL,
    importance_score REAL DEFAULT 1.0,
    access_count INTEGER DEFAULT 0,
    last_accessed DATETIME DEFAULT (datetime('now')),
    retention_strength REAL DEFAULT 1.0,
    created_at DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_agent_memory_learner ON agent_memory(learner_id, importance_score DESC, last_accessed DESC);

CREATE TABLE IF NOT EXISTS writing_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    learner_id INTEGER NOT NULL REFERENCES learner_profiles(id),
    session_id TEXT NOT NULL UNIQUE,
    essay_title TEXT,
    essay_content TEXT,
    writing_goal TEXT,
    word_count INTEGER DEFAULT 0,
    revision_count INTEGER DEFAULT 0,
    interaction_count INTEGER DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'active',
    started_at DATETIME DEFAULT (datetime('now')),
    completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_writing_sessions_learner ON writing_sessions(learner_id);
`
