package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"investmate-backend/internal/auth"
	"investmate-backend/internal/logging"
	"investmate-backend/internal/models"
	"investmate-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type AuthHandler struct {
	users         UserStore
	startups      StartupStore
	investors     InvestorStore
	jwtSecret     string
	secureCookies bool
	log           logging.Logger
}

func NewAuthHandler(users UserStore, startups StartupStore, investors InvestorStore, jwtSecret string, secureCookies bool, log logging.Logger) *AuthHandler {
	return &AuthHandler{
		users:         users,
		startups:      startups,
		investors:     investors,
		jwtSecret:     jwtSecret,
		secureCookies: secureCookies,
		log:           log,
	}
}

// --- Request / Response types ---

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// --- POST /api/auth/register ---

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(stringValue(body, "name"))
	email := normalizeEmail(stringValue(body, "email"))
	password := stringValue(body, "password")
	role := stringValue(body, "role")
	for _, k := range []string{"name", "email", "password", "role"} {
		delete(body, k)
	}

	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if len(password) < auth.MinPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if !models.ValidRole(role) {
		writeError(w, http.StatusBadRequest, "role must be startup or investor")
		return
	}

	existing, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		h.log.Error(r.Context(), "find user by email", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}

	// Whatever is left of the body is profile data for the chosen role.
	fields, dropped, err := models.SanitizeProfileUpdate(role, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(dropped) > 0 {
		h.log.Info(r.Context(), "ignoring unknown profile fields", "fields", dropped)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.log.Error(r.Context(), "hash password", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &models.User{Name: name, Email: email, Password: hash, Role: role}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.log.Error(r.Context(), "create user", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.createProfile(r.Context(), user, fields); err != nil {
		h.log.Error(r.Context(), "create profile", "user_id", user.ID.Hex(), "role", role, "err", err)
		if delErr := h.users.Delete(r.Context(), user.ID); delErr != nil {
			h.log.Error(r.Context(), "roll back user", "user_id", user.ID.Hex(), "err", delErr)
		}
		writeError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	h.log.Info(r.Context(), "user registered", "user_id", user.ID.Hex(), "role", role)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"userId":  user.ID.Hex(),
	})
}

func (h *AuthHandler) createProfile(ctx context.Context, user *models.User, fields bson.M) error {
	switch user.Role {
	case models.RoleStartup:
		var st models.Startup
		if err := models.DecodeFields(fields, &st); err != nil {
			return err
		}
		st.UserID = user.ID
		if st.StartupName == "" {
			st.StartupName = user.Name
		}
		if st.Tagline == "" {
			st.Tagline = "No tagline"
		}
		if st.FounderName == "" {
			st.FounderName = user.Name
		}
		if st.Problem == "" {
			st.Problem = "To be updated"
		}
		if st.Solution == "" {
			st.Solution = "To be updated"
		}
		return h.startups.Create(ctx, &st)
	default:
		var inv models.Investor
		if err := models.DecodeFields(fields, &inv); err != nil {
			return err
		}
		inv.UserID = user.ID
		if inv.FullName == "" {
			inv.FullName = user.Name
		}
		if len(inv.PreferredSectors) == 0 {
			inv.PreferredSectors = inv.Sectors
		}
		return h.investors.Create(ctx, &inv)
	}
}

// --- POST /api/auth/login ---

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		h.log.Error(r.Context(), "find user by email", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID.Hex(), user.Email, user.Role, []byte(h.jwtSecret), auth.TokenTTL)
	if err != nil {
		h.log.Error(r.Context(), "sign token", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	auth.SetSessionCookie(w, user.Role, token, h.secureCookies)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user": SessionUser{
			ID:    user.ID.Hex(),
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

// --- POST /api/auth/logout ---

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if !models.ValidRole(role) {
		role = models.RoleStartup
	}
	auth.ClearSessionCookie(w, role)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// --- GET /api/auth/me ---

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "find user", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var profile any
	switch user.Role {
	case models.RoleStartup:
		st, err := h.startups.FindByUserID(r.Context(), user.ID)
		if err != nil {
			h.log.Error(r.Context(), "find startup profile", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if st != nil {
			profile = st
		}
	case models.RoleInvestor:
		inv, err := h.investors.FindByUserID(r.Context(), user.ID)
		if err != nil {
			h.log.Error(r.Context(), "find investor profile", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if inv != nil {
			profile = inv
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"profile": profile,
	})
}

// --- POST /api/auth/change-password ---

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "currentPassword and newPassword are required")
		return
	}
	if len(req.NewPassword) < auth.MinPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "find user", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.log.Error(r.Context(), "hash password", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		h.log.Error(r.Context(), "update password", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// --- Helpers ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
