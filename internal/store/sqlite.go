package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        email TEXT UNIQUE NOT NULL,
        name TEXT NOT NULL DEFAULT '',
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS homework_sessions (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        subject TEXT NOT NULL,
        question TEXT NOT NULL,
        response TEXT NOT NULL, -- HelpResult envelope as JSON
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS user_preferences (
        user_id INTEGER PRIMARY KEY,
        preferred_name TEXT NOT NULL DEFAULT '',
        grade_level TEXT NOT NULL DEFAULT '',
        difficulty_preference TEXT NOT NULL DEFAULT 'medium'
            CHECK (difficulty_preference IN ('easy', 'medium', 'hard')),
        show_step_by_step BOOLEAN NOT NULL DEFAULT TRUE,
        show_practice_problems BOOLEAN NOT NULL DEFAULT TRUE,
        theme TEXT NOT NULL DEFAULT 'light',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?", email).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(email, name, passwordHash string) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)", email, name, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getUserByID(id)
}

func (s *SQLiteStore) getUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Session methods
func (s *SQLiteStore) CreateSession(session *HomeworkSession) error {
	session.ID = uuid.NewString()
	session.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO homework_sessions (id, user_id, subject, question, response, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(session.ID, session.UserID, session.Subject, session.Question, string(session.Response), session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute session insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSessionsByUserID(userID int64) ([]HomeworkSession, error) {
	rows, err := s.db.Query("SELECT id, user_id, subject, question, response, created_at FROM homework_sessions WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []HomeworkSession
	for rows.Next() {
		var session HomeworkSession
		var response string
		if err := rows.Scan(&session.ID, &session.UserID, &session.Subject, &session.Question, &response, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		session.Response = []byte(response)
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *SQLiteStore) GetSessionByID(sessionID string, userID int64) (*HomeworkSession, error) {
	var session HomeworkSession
	var response string
	err := s.db.QueryRow("SELECT id, user_id, subject, question, response, created_at FROM homework_sessions WHERE id = ? AND user_id = ?", sessionID, userID).
		Scan(&session.ID, &session.UserID, &session.Subject, &session.Question, &response, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.Response = []byte(response)
	return &session, nil
}

func (s *SQLiteStore) DeleteSession(sessionID string, userID int64) (bool, error) {
	res, err := s.db.Exec("DELETE FROM homework_sessions WHERE id = ? AND user_id = ?", sessionID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// Preference methods
func (s *SQLiteStore) GetPreferences(userID int64) (*UserPreferences, error) {
	var prefs UserPreferences
	err := s.db.QueryRow(`SELECT user_id, preferred_name, grade_level, difficulty_preference,
        show_step_by_step, show_practice_problems, theme, created_at, updated_at
        FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&prefs.UserID, &prefs.PreferredName, &prefs.GradeLevel, &prefs.DifficultyPreference,
			&prefs.ShowStepByStep, &prefs.ShowPracticeProblems, &prefs.Theme, &prefs.CreatedAt, &prefs.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Nothing saved yet
		}
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	return &prefs, nil
}

// UpsertPreferences replaces the user's preferences wholesale, keeping at
// most one row per user.
func (s *SQLiteStore) UpsertPreferences(prefs *UserPreferences) error {
	now := time.Now()

	stmt, err := s.db.Prepare(`INSERT INTO user_preferences
        (user_id, preferred_name, grade_level, difficulty_preference, show_step_by_step, show_practice_problems, theme, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            preferred_name = excluded.preferred_name,
            grade_level = excluded.grade_level,
            difficulty_preference = excluded.difficulty_preference,
            show_step_by_step = excluded.show_step_by_step,
            show_practice_problems = excluded.show_practice_problems,
            theme = excluded.theme,
            updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare preferences upsert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(prefs.UserID, prefs.PreferredName, prefs.GradeLevel, prefs.DifficultyPreference,
		prefs.ShowStepByStep, prefs.ShowPracticeProblems, prefs.Theme, now, now)
	if err != nil {
		return fmt.Errorf("failed to execute preferences upsert: %w", err)
	}

	prefs.UpdatedAt = now
	return nil
}
