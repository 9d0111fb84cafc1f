package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/hestia/internal/model"
)

func TestItemHandler_Create(t *testing.T) {
	env := setupEnv(t)
	l := env.createList(t, env.alice.ID, "Weekly")
	path := fmt.Sprintf("/api/lists/%d/items", l.ID)

	t.Run("classifies blank category", func(t *testing.T) {
		rec := env.do(t, env.alice.ID, "POST", path, map[string]any{"name": "chicken breast", "quantity": 2, "unit": "kg"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		item := decode[model.Item](t, rec)
		assert.Equal(t, "chicken breast", item.Name)
		assert.Equal(t, 2.0, item.Quantity)
		assert.Equal(t, "kg", item.Unit)
		assert.Equal(t, "Meat", item.Category)
		assert.False(t, item.Completed)
	})

	t.Run("keeps explicit category", func(t *testing.T) {
		rec := env.do(t, env.alice.ID, "POST", path, map[string]any{"name": "chicken stock", "category": "pantry"})
		require.Equal(t, http.StatusCreated, rec.Code)
		item := decode[model.Item](t, rec)
		assert.Equal(t, "Pantry", item.Category)
		assert.Equal(t, 1.0, item.Quantity)
		assert.Equal(t, "unit", item.Unit)
	})

	t.Run("validation", func(t *testing.T) {
		rec := env.do(t, env.alice.ID, "POST", path, map[string]any{"name": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.do(t, env.alice.ID, "POST", path, map[string]any{"name": "milk", "quantity": -1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.do(t, env.alice.ID, "POST", "/api/lists/x/items", map[string]any{"name": "milk"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("other user's list", func(t *testing.T) {
		rec := env.do(t, env.bob.ID, "POST", path, map[string]any{"name": "milk"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestItemHandler_CreateBulk(t *testing.T) {
	env := setupEnv(t)
	l := env.createList(t, env.alice.ID, "Weekly")
	path := fmt.Sprintf("/api/lists/%d/items/bulk", l.ID)

	body := map[string]any{"items": []map[string]any{
		{"name": "flour", "quantity": 2, "unit": "cups"},
		{"name": "butter"},
		{"name": "mystery", "category": "bakery"},
	}}
	rec := env.do(t, env.alice.ID, "POST", path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	items := decode[[]model.Item](t, rec)
	require.Len(t, items, 3)
	assert.Equal(t, "Pantry", items[0].Category)
	assert.Equal(t, "Dairy", items[1].Category)
	assert.Equal(t, "Bakery", items[2].Category)

	t.Run("empty", func(t *testing.T) {
		rec := env.do(t, env.alice.ID, "POST", path, map[string]any{"items": []any{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("blank name rejects the batch", func(t *testing.T) {
		rec := env.do(t, env.alice.ID, "POST", path, map[string]any{"items": []map[string]any{{"name": "salt"}, {"name": " "}}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		got, err := env.lists.GetList(l.ID, env.alice.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 3)
	})

	t.Run("other user's list", func(t *testing.T) {
		rec := env.do(t, env.bob.ID, "POST", path, body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestItemHandler_Update(t *testing.T) {
	env := setupEnv(t)
	l := env.createList(t, env.alice.ID, "Weekly")
	item := env.createItem(t, env.alice.ID, l.ID, "milk")
	path := fmt.Sprintf("/api/items/%d", item.ID)

	rec := env.do(t, env.alice.ID, "PUT", path, map[string]any{"quantity": 3, "completed": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[model.Item](t, rec)
	assert.Equal(t, "milk", got.Name, "name is kept when absent")
	assert.Equal(t, 3.0, got.Quantity)
	assert.Equal(t, "Dairy", got.Category)
	assert.True(t, got.Completed)

	rec = env.do(t, env.alice.ID, "PUT", path, map[string]any{"name": "oat milk", "unit": "L"})
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[model.Item](t, rec)
	assert.Equal(t, "oat milk", got.Name)
	assert.Equal(t, "L", got.Unit)
	assert.Equal(t, 3.0, got.Quantity)
	assert.True(t, got.Completed)

	rec = env.do(t, env.alice.ID, "PUT", path, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, env.bob.ID, "PUT", path, map[string]any{"name": "taken"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemHandler_ToggleAndClear(t *testing.T) {
	env := setupEnv(t)
	l := env.createList(t, env.alice.ID, "Weekly")
	milk := env.createItem(t, env.alice.ID, l.ID, "milk")
	env.createItem(t, env.alice.ID, l.ID, "bread")

	rec := env.do(t, env.alice.ID, "PATCH", fmt.Sprintf("/api/items/%d/toggle", milk.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.Item](t, rec).Completed)

	rec = env.do(t, env.bob.ID, "PATCH", fmt.Sprintf("/api/items/%d/toggle", milk.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, env.bob.ID, "POST", fmt.Sprintf("/api/lists/%d/clear-completed", l.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, env.alice.ID, "POST", fmt.Sprintf("/api/lists/%d/clear-completed", l.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[map[string]int64](t, rec)["removed"])

	got, err := env.lists.GetList(l.ID, env.alice.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "bread", got.Items[0].Name)
}

func TestItemHandler_Delete(t *testing.T) {
	env := setupEnv(t)
	l := env.createList(t, env.alice.ID, "Weekly")
	item := env.createItem(t, env.alice.ID, l.ID, "milk")
	path := fmt.Sprintf("/api/items/%d", item.ID)

	rec := env.do(t, env.bob.ID, "DELETE", path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, env.alice.ID, "DELETE", path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, env.alice.ID, "DELETE", path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
