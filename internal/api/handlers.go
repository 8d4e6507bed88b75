package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/studyhall/homework-helper/internal/auth"
	"github.com/studyhall/homework-helper/internal/core"
	"github.com/studyhall/homework-helper/internal/store"
)

type APIHandler struct {
	helpService *core.HelpService
}

func NewAPIHandler(hs *core.HelpService) *APIHandler {
	return &APIHandler{helpService: hs}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// JWTAuthMiddleware rejects requests without a valid bearer token and puts
// the caller's user ID on the request context.
func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.userFromAuthHeader(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware attaches the caller's user ID when a valid bearer
// token is present, and lets everything else through anonymously. The help
// endpoint answers unauthenticated students too; only persistence needs an
// identity.
func (h *APIHandler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.userFromAuthHeader(r)
		if err != nil || user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromAuthHeader resolves the Authorization header to a user. Returns
// (nil, nil) when the header is absent, and an error when the token is
// present but invalid or unknown.
func (h *APIHandler) userFromAuthHeader(r *http.Request) (*store.User, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	email, err := auth.ValidateJWT(tokenString)
	if err != nil {
		return nil, errors.New("Invalid token")
	}

	user, err := h.helpService.GetUserByEmail(email)
	if err != nil {
		log.Printf("Error resolving user %s from token: %v", email, err)
		return nil, errors.New("Failed to process user identity")
	}
	if user == nil {
		return nil, errors.New("User not found")
	}
	return user, nil
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	existing, err := h.helpService.GetUserByEmail(req.Email)
	if err != nil {
		log.Printf("Error checking existing user %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "An account with this email already exists")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for user %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user, err := h.helpService.CreateUser(req.Email, req.Name, hashedPassword)
	if err != nil {
		log.Printf("Error creating user %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.helpService.GetUserByEmail(req.Email)
	if err != nil {
		log.Printf("Error getting user %s: %v", req.Email, err)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user.Email)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type HelpRequest struct {
	Subject  string `json:"subject"`
	Question string `json:"question"`
}

func (h *APIHandler) HelpHandler(w http.ResponseWriter, r *http.Request) {
	var req HelpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Subject == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "Subject and question are required")
		return
	}

	var userID *int64
	if id, ok := r.Context().Value("userID").(int64); ok {
		userID = &id
	}

	result, err := h.helpService.GetHomeworkHelp(r.Context(), userID, req.Subject, req.Question)
	if err != nil {
		log.Printf("Error getting homework help (subject %q): %v", req.Subject, err)
		writeError(w, http.StatusInternalServerError, "Failed to get homework help")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	sessions, err := h.helpService.GetSessions(userID)
	if err != nil {
		log.Printf("Error listing sessions for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []store.HomeworkSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.helpService.GetSession(sessionID, userID)
	if err != nil {
		log.Printf("Error getting session %s for user %d: %v", sessionID, userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *APIHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	sessionID := chi.URLParam(r, "sessionID")

	deleted, err := h.helpService.DeleteSession(sessionID, userID)
	if err != nil {
		log.Printf("Error deleting session %s for user %d: %v", sessionID, userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	prefs, err := h.helpService.GetPreferences(userID)
	if err != nil {
		log.Printf("Error getting preferences for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type SavePreferencesRequest struct {
	PreferredName        string `json:"preferred_name"`
	GradeLevel           string `json:"grade_level"`
	DifficultyPreference string `json:"difficulty_preference"`
	ShowStepByStep       *bool  `json:"show_step_by_step"`
	ShowPracticeProblems *bool  `json:"show_practice_problems"`
	Theme                string `json:"theme"`
}

func (h *APIHandler) SavePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req SavePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	prefs := &store.UserPreferences{
		UserID:               userID,
		PreferredName:        req.PreferredName,
		GradeLevel:           req.GradeLevel,
		DifficultyPreference: req.DifficultyPreference,
		ShowStepByStep:       true,
		ShowPracticeProblems: true,
		Theme:                req.Theme,
	}
	if req.ShowStepByStep != nil {
		prefs.ShowStepByStep = *req.ShowStepByStep
	}
	if req.ShowPracticeProblems != nil {
		prefs.ShowPracticeProblems = *req.ShowPracticeProblems
	}

	if err := h.helpService.SavePreferences(prefs); err != nil {
		if errors.Is(err, core.ErrInvalidDifficulty) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Error saving preferences for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}
