package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hestia/internal/auth"
	"github.com/dukerupert/hestia/internal/model"
	"github.com/dukerupert/hestia/internal/store"
)

const minPasswordLength = 8

type UserHandler struct {
	users  *store.UserStore
	lists  *store.ListStore
	logger *slog.Logger
}

func NewUserHandler(us *store.UserStore, ls *store.ListStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: us, lists: ls, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case !validEmail(req.Email):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
		return
	case req.Name == "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	case len(req.Password) < minPasswordLength:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	user, err := h.users.Create(req.Email, req.Name, req.Password)
	if errors.Is(err, store.ErrEmailTaken) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
		return
	}
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create user"})
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	h.writeProfile(w, user)
}

type updateProfileRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UpdateProfile changes name and email. Blank fields keep their value.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	existing, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = existing.Email
	} else if !validEmail(email) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = existing.Name
	}

	user, err := h.users.Update(userID, email, name)
	if errors.Is(err, store.ErrEmailTaken) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
		return
	}
	if err != nil {
		h.logger.Error("update user", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	h.writeProfile(w, user)
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, user *model.User) {
	stats, err := h.lists.Stats(user.ID)
	if err != nil {
		h.logger.Error("user stats", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}
	writeJSON(w, http.StatusOK, model.Profile{User: *user, Stats: *stats})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	ok, err := h.users.CheckPassword(userID, req.CurrentPassword)
	if err != nil {
		h.logger.Error("check password", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to change password"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "current password is incorrect"})
		return
	}

	if err := h.users.SetPassword(userID, req.NewPassword); err != nil {
		h.logger.Error("set password", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to change password"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
