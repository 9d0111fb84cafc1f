package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hestia/internal/auth"
	"github.com/dukerupert/hestia/internal/store"
	"github.com/dukerupert/hestia/internal/websocket"
)

type ListHandler struct {
	lists  *store.ListStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewListHandler(ls *store.ListStore, hub *websocket.Hub, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: ls, hub: hub, logger: logger}
}

func (h *ListHandler) broadcast(userID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(userID, msg)
	}
}

type listRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req listRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	list, err := h.lists.CreateList(userID, req.Name, req.Description)
	if err != nil {
		h.logger.Error("create list", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create list"})
		return
	}

	h.broadcast(userID, websocket.NewMessage(websocket.EntityList, websocket.ActionCreated, list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	lists, err := h.lists.ListLists(userID)
	if err != nil {
		h.logger.Error("list lists", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list shopping lists"})
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	list, err := h.lists.GetList(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get list", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get list"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req listRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	list, err := h.lists.UpdateList(id, userID, req.Name, req.Description)
	if err != nil {
		h.logger.Error("update list", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update list"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}

	h.broadcast(userID, websocket.NewMessage(websocket.EntityList, websocket.ActionUpdated, list.ID, nil))
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.lists.GetList(id, userID)
	if err != nil {
		h.logger.Error("get list", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get list"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}

	if err := h.lists.DeleteList(id, userID); err != nil {
		h.logger.Error("delete list", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete list"})
		return
	}

	h.broadcast(userID, websocket.NewMessage(websocket.EntityList, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
