package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hestia/internal/ai"
	"github.com/dukerupert/hestia/internal/auth"
	"github.com/dukerupert/hestia/internal/model"
	"github.com/dukerupert/hestia/internal/store"
	"github.com/dukerupert/hestia/internal/websocket"
)

const maxBulkItems = 200

type ItemHandler struct {
	lists  *store.ListStore
	ai     *ai.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewItemHandler(ls *store.ListStore, svc *ai.Service, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{lists: ls, ai: svc, hub: hub, logger: logger}
}

func (h *ItemHandler) broadcast(userID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(userID, msg)
	}
}

type itemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

func (req itemRequest) toNewItem() model.NewItem {
	return model.NewItem{Name: req.Name, Quantity: req.Quantity, Unit: req.Unit, Category: req.Category}
}

// Create adds one item. A blank category is filled in by the classifier.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	listID, err := parsePathID(r, "list_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list id"})
		return
	}

	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must not be negative"})
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		req.Category = h.ai.ClassifyProduct(r.Context(), req.Name).Category
	}

	item, err := h.lists.CreateItem(userID, listID, req.toNewItem())
	if err != nil {
		h.logger.Error("create item", "list_id", listID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}

	h.broadcast(userID, websocket.NewMessage(websocket.EntityItem, websocket.ActionCreated, item.ID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusCreated, item)
}

type bulkRequest struct {
	Items []itemRequest `json:"items"`
}

// CreateBulk commits confirmed candidates in a single transaction. Items
// without a category go through the keyword classifier only, so a large
// batch never waits on the model.
func (h *ItemHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	listID, err := parsePathID(r, "list_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list id"})
		return
	}

	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	if len(req.Items) > maxBulkItems {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "too many items"})
		return
	}

	in := make([]model.NewItem, 0, len(req.Items))
	for _, it := range req.Items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "every item needs a name"})
			return
		}
		if strings.TrimSpace(it.Category) == "" {
			it.Category = h.ai.KeywordCategory(it.Name)
		}
		in = append(in, it.toNewItem())
	}

	items, err := h.lists.CreateItems(userID, listID, in)
	if err != nil {
		h.logger.Error("create items", "list_id", listID, "count", len(in), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create items"})
		return
	}
	if items == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}

	h.broadcast(userID, websocket.NewMessage(websocket.EntityItem, websocket.ActionCreated, 0, map[string]any{"list_id": listID, "count": len(items)}))
	writeJSON(w, http.StatusCreated, items)
}

type updateItemRequest struct {
	Name      *string  `json:"name"`
	Quantity  *float64 `json:"quantity"`
	Unit      *string  `json:"unit"`
	Category  *string  `json:"category"`
	Completed *bool    `json:"completed"`
}

// Update applies the fields present in the body to the stored item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	existing, err := h.lists.GetItem(id, userID)
	if err != nil {
		h.logger.Error("get item", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	in := model.NewItem{
		Name:     existing.Name,
		Quantity: existing.Quantity,
		Unit:     existing.Unit,
		Category: existing.Category,
	}
	completed := existing.Completed
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name must not be empty"})
			return
		}
		in.Name = *req.Name
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must not be negative"})
			return
		}
		in.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		in.Unit = *req.Unit
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Completed != nil {
		completed = *req.Completed
	}

	item, err := h.lists.UpdateItem(id, userID, in, completed)
	if err != nil {
		h.logger.Error("update item", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(userID, websocket.NewMessage(websocket.EntityItem, websocket.ActionUpdated, item.ID, map[string]any{"list_id": item.ListID}))
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.lists.GetItem(id, userID)
	if err != nil {
		h.logger.Error("get item", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	if err := h.lists.DeleteItem(id, userID); err != nil {
		h.logger.Error("delete item", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.broadcast(userID, websocket.NewMessage(websocket.EntityItem, websocket.ActionDeleted, id, map[string]any{"list_id": existing.ListID}))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.lists.ToggleCompleted(id, userID)
	if err != nil {
		h.logger.Error("toggle item", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(userID, websocket.NewMessage(websocket.EntityItem, websocket.ActionToggled, item.ID, map[string]any{"list_id": item.ListID, "completed": item.Completed}))
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	listID, err := parsePathID(r, "list_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list id"})
		return
	}

	list, err := h.lists.GetList(listID, userID)
	if err != nil {
		h.logger.Error("get list", "id", listID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get list"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}

	n, err := h.lists.ClearCompleted(listID, userID)
	if err != nil {
		h.logger.Error("clear completed", "list_id", listID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear completed items"})
		return
	}

	if n > 0 {
		h.broadcast(userID, websocket.NewMessage(websocket.EntityItem, websocket.ActionCleared, 0, map[string]any{"list_id": listID, "count": n}))
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": n})
}
