package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/hestia/internal/auth"
	"github.com/dukerupert/hestia/internal/grocery"
	"github.com/dukerupert/hestia/internal/recipe"
	"github.com/dukerupert/hestia/internal/store"
)

// RecipeHandler turns pasted recipes into ingredient candidates and
// reconciles candidates against the user's lists. Nothing here writes to a
// list; committing is a separate bulk call.
type RecipeHandler struct {
	extractor  *recipe.Extractor
	reconciler *grocery.Reconciler
	lists      *store.ListStore
	logger     *slog.Logger
}

func NewRecipeHandler(ex *recipe.Extractor, rc *grocery.Reconciler, ls *store.ListStore, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{extractor: ex, reconciler: rc, lists: ls, logger: logger}
}

type extractRequest struct {
	RecipeText string `json:"recipe_text"`
}

func (h *RecipeHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.RecipeText == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "recipe_text is required"})
		return
	}

	writeJSON(w, http.StatusOK, h.extractor.Extract(req.RecipeText))
}

type reconcileRequest struct {
	Ingredients *[]string `json:"ingredients"`
	ListIDs     []int64   `json:"list_ids"`
}

func (h *RecipeHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Ingredients == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ingredients are required"})
		return
	}

	result, err := h.reconcile(r, *req.Ingredients, req.ListIDs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load existing items"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type analyzeRequest struct {
	RecipeText string  `json:"recipe_text"`
	ListIDs    []int64 `json:"list_ids"`
}

// Analyze extracts a recipe and reconciles its ingredients in one call.
func (h *RecipeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.RecipeText == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "recipe_text is required"})
		return
	}

	extraction := h.extractor.Extract(req.RecipeText)
	result, err := h.reconcile(r, recipe.Names(extraction.Ingredients), req.ListIDs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load existing items"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recipe":         extraction,
		"reconciliation": result,
	})
}

func (h *RecipeHandler) reconcile(r *http.Request, candidates []string, listIDs []int64) (grocery.Result, error) {
	userID := auth.UserID(r.Context())
	existing, err := h.lists.ExistingItems(userID, listIDs...)
	if err != nil {
		h.logger.Error("load existing items", "user_id", userID, "error", err)
		return grocery.Result{}, err
	}
	return h.reconciler.ReconcileItems(candidates, existing), nil
}
