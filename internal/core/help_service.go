package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/studyhall/homework-helper/internal/llm"
	"github.com/studyhall/homework-helper/internal/store"
)

// maxCompletionTokens caps the size of one tutoring reply.
const maxCompletionTokens = 4000

// ErrInvalidDifficulty is returned when a preference update names an
// unknown difficulty level.
var ErrInvalidDifficulty = errors.New("invalid difficulty preference")

// HelpResult is the full structured output of one homework-help request:
// the raw completion text plus whatever sections could be extracted from it.
type HelpResult struct {
	Success  bool     `json:"success"`
	Response string   `json:"response"`
	Sections Sections `json:"sections"`
}

// HelpService owns the help flow and the surrounding account, history and
// preferences operations. Clients are injected at construction.
type HelpService struct {
	dbStore  *store.SQLiteStore
	provider llm.Provider
}

func NewHelpService(db *store.SQLiteStore, provider llm.Provider) *HelpService {
	return &HelpService{
		dbStore:  db,
		provider: provider,
	}
}

// GetHomeworkHelp runs one request end to end: build the prompt, call the
// completion provider, parse sections, and (for authenticated callers)
// record the session. The store write is fire-and-forget: its failure is
// logged, never surfaced, and never delays the response.
func (s *HelpService) GetHomeworkHelp(ctx context.Context, userID *int64, subject, question string) (*HelpResult, error) {
	prompt := BuildHelpPrompt(subject, question)

	resp, err := s.provider.Complete(ctx, llm.Request{
		Prompt:    prompt,
		MaxTokens: maxCompletionTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	result := &HelpResult{
		Success:  true,
		Response: resp.Text,
		Sections: ParseSections(resp.Text),
	}

	if userID != nil {
		go s.saveSession(*userID, subject, question, result)
	}

	return result, nil
}

func (s *HelpService) saveSession(userID int64, subject, question string, result *HelpResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("Failed to marshal help result for user %d: %v", userID, err)
		return
	}

	session := store.HomeworkSession{
		UserID:   userID,
		Subject:  subject,
		Question: question,
		Response: payload,
	}
	if err := s.dbStore.CreateSession(&session); err != nil {
		log.Printf("Failed to save homework session for user %d: %v", userID, err)
	}
}

// Account methods
func (s *HelpService) GetUserByEmail(email string) (*store.User, error) {
	return s.dbStore.GetUserByEmail(email)
}

func (s *HelpService) CreateUser(email, name, passwordHash string) (*store.User, error) {
	return s.dbStore.CreateUser(email, name, passwordHash)
}

// History methods
func (s *HelpService) GetSessions(userID int64) ([]store.HomeworkSession, error) {
	return s.dbStore.GetSessionsByUserID(userID)
}

func (s *HelpService) GetSession(sessionID string, userID int64) (*store.HomeworkSession, error) {
	return s.dbStore.GetSessionByID(sessionID, userID)
}

func (s *HelpService) DeleteSession(sessionID string, userID int64) (bool, error) {
	return s.dbStore.DeleteSession(sessionID, userID)
}

// Preference methods
func (s *HelpService) GetPreferences(userID int64) (*store.UserPreferences, error) {
	prefs, err := s.dbStore.GetPreferences(userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return store.DefaultPreferences(userID), nil
	}
	return prefs, nil
}

func (s *HelpService) SavePreferences(prefs *store.UserPreferences) error {
	switch prefs.DifficultyPreference {
	case "easy", "medium", "hard":
	case "":
		prefs.DifficultyPreference = "medium"
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, prefs.DifficultyPreference)
	}
	if prefs.Theme == "" {
		prefs.Theme = "light"
	}
	return s.dbStore.UpsertPreferences(prefs)
}
