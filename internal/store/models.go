package store

import (
	"encoding/json"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// HomeworkSession is one saved help exchange. The Response column holds the
// full HelpResult envelope as opaque JSON; the store never looks inside it.
type HomeworkSession struct {
	ID        string          `json:"id"` // Using UUID for external ID
	UserID    int64           `json:"user_id"`
	Subject   string          `json:"subject"`
	Question  string          `json:"question"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"created_at"`
}

// UserPreferences holds per-user display and learning settings.
// At most one row per user; saved wholesale on every update.
type UserPreferences struct {
	UserID               int64     `json:"user_id"`
	PreferredName        string    `json:"preferred_name"`
	GradeLevel           string    `json:"grade_level"`
	DifficultyPreference string    `json:"difficulty_preference"` // "easy", "medium" or "hard"
	ShowStepByStep       bool      `json:"show_step_by_step"`
	ShowPracticeProblems bool      `json:"show_practice_problems"`
	Theme                string    `json:"theme"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preferences used before a user saves any.
func DefaultPreferences(userID int64) *UserPreferences {
	return &UserPreferences{
		UserID:               userID,
		DifficultyPreference: "medium",
		ShowStepByStep:       true,
		ShowPracticeProblems: true,
		Theme:                "light",
	}
}
