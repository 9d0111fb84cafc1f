package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/hestia/internal/ai"
	"github.com/dukerupert/hestia/internal/auth"
	"github.com/dukerupert/hestia/internal/model"
	"github.com/dukerupert/hestia/internal/store"
	"github.com/dukerupert/hestia/internal/websocket"
)

const (
	defaultSuggestions = 10
	maxSuggestions     = 50
	maxPeople          = 100
)

type AIHandler struct {
	svc    *ai.Service
	lists  *store.ListStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAIHandler(svc *ai.Service, ls *store.ListStore, hub *websocket.Hub, logger *slog.Logger) *AIHandler {
	return &AIHandler{svc: svc, lists: ls, hub: hub, logger: logger}
}

type classifyRequest struct {
	Name string `json:"name"`
}

func (h *AIHandler) ClassifyProduct(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	writeJSON(w, http.StatusOK, h.svc.ClassifyProduct(r.Context(), req.Name))
}

type generateListRequest struct {
	Theme       string `json:"theme"`
	PeopleCount int    `json:"people_count"`
	Save        bool   `json:"save"`
	ListName    string `json:"list_name"`
}

// GenerateList proposes items for a theme. With save set, the items are
// stored on a new list that is returned alongside them.
func (h *AIHandler) GenerateList(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req generateListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Theme = strings.TrimSpace(req.Theme)
	if req.Theme == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "theme is required"})
		return
	}
	people, ok := peopleCount(req.PeopleCount)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("people_count must be between 1 and %d", maxPeople)})
		return
	}

	items := h.svc.GenerateList(r.Context(), req.Theme, people)
	resp := map[string]any{"items": items}

	if req.Save {
		name := strings.TrimSpace(req.ListName)
		if name == "" {
			name = fmt.Sprintf("%s (%d people)", req.Theme, people)
		}
		list, err := h.saveList(userID, name, items)
		if err != nil {
			h.logger.Error("save generated list", "user_id", userID, "theme", req.Theme, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save list"})
			return
		}
		if h.hub != nil {
			h.hub.Broadcast(userID, websocket.NewMessage(websocket.EntityList, websocket.ActionCreated, list.ID, nil))
		}
		resp["list"] = list
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AIHandler) saveList(userID int64, name string, items []ai.SuggestedItem) (*model.ShoppingList, error) {
	in := make([]model.NewItem, len(items))
	for i, it := range items {
		in[i] = model.NewItem{Name: it.Name, Quantity: it.Quantity, Unit: it.Unit, Category: it.Category}
	}
	return h.lists.CreateListWithItems(userID, name, "", in)
}

type recipeIngredientsRequest struct {
	RecipeName  string `json:"recipe_name"`
	PeopleCount int    `json:"people_count"`
	Difficulty  string `json:"difficulty"`
}

func (h *AIHandler) RecipeIngredients(w http.ResponseWriter, r *http.Request) {
	var req recipeIngredientsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.RecipeName) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "recipe_name is required"})
		return
	}
	people, ok := peopleCount(req.PeopleCount)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("people_count must be between 1 and %d", maxPeople)})
		return
	}

	items := h.svc.RecipeIngredients(r.Context(), req.RecipeName, people, req.Difficulty)
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Suggestions returns the names the user adds most often.
func (h *AIHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	limit := defaultSuggestions
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = min(n, maxSuggestions)
	}

	names, err := h.lists.HistorySuggestions(userID, limit)
	if err != nil {
		h.logger.Error("history suggestions", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load suggestions"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": names})
}

// peopleCount defaults a missing count to 1 and rejects out-of-range values.
func peopleCount(n int) (int, bool) {
	if n == 0 {
		return 1, true
	}
	if n < 1 || n > maxPeople {
		return 0, false
	}
	return n, true
}
