package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/hestia/internal/ai"
	"github.com/dukerupert/hestia/internal/auth"
	"github.com/dukerupert/hestia/internal/database"
	"github.com/dukerupert/hestia/internal/grocery"
	"github.com/dukerupert/hestia/internal/model"
	"github.com/dukerupert/hestia/internal/recipe"
	"github.com/dukerupert/hestia/internal/store"
	"github.com/dukerupert/hestia/internal/websocket"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testEnv struct {
	users *store.UserStore
	lists *store.ListStore
	hub   *websocket.Hub
	mux   *http.ServeMux
	alice *model.User
	bob   *model.User
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupEnvWith(t, nil)
}

// setupEnvWith wires the handlers around gen. A nil gen runs keyword-only.
func setupEnvWith(t *testing.T, gen ai.Generator) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		users: store.NewUserStore(db),
		lists: store.NewListStore(db),
		hub:   websocket.NewHub(testLogger),
		mux:   http.NewServeMux(),
	}

	env.alice, err = env.users.Create("alice@example.com", "Alice", "password123")
	require.NoError(t, err)
	env.bob, err = env.users.Create("bob@example.com", "Bob", "password456")
	require.NoError(t, err)

	svc := ai.NewService(gen, nil, testLogger)
	listH := NewListHandler(env.lists, env.hub, testLogger)
	itemH := NewItemHandler(env.lists, svc, env.hub, testLogger)
	recipeH := NewRecipeHandler(recipe.NewExtractor(nil, nil), grocery.NewReconciler(0), env.lists, testLogger)
	aiH := NewAIHandler(svc, env.lists, env.hub, testLogger)
	userH := NewUserHandler(env.users, env.lists, testLogger)

	m := env.mux
	m.HandleFunc("POST /api/users", userH.Register)
	m.HandleFunc("GET /api/users/profile", userH.Profile)
	m.HandleFunc("PUT /api/users/profile", userH.UpdateProfile)
	m.HandleFunc("PUT /api/users/password", userH.ChangePassword)
	m.HandleFunc("POST /api/lists", listH.Create)
	m.HandleFunc("GET /api/lists", listH.List)
	m.HandleFunc("GET /api/lists/{id}", listH.Get)
	m.HandleFunc("PUT /api/lists/{id}", listH.Update)
	m.HandleFunc("DELETE /api/lists/{id}", listH.Delete)
	m.HandleFunc("POST /api/lists/{list_id}/items", itemH.Create)
	m.HandleFunc("POST /api/lists/{list_id}/items/bulk", itemH.CreateBulk)
	m.HandleFunc("POST /api/lists/{list_id}/clear-completed", itemH.ClearCompleted)
	m.HandleFunc("PUT /api/items/{id}", itemH.Update)
	m.HandleFunc("DELETE /api/items/{id}", itemH.Delete)
	m.HandleFunc("PATCH /api/items/{id}/toggle", itemH.Toggle)
	m.HandleFunc("POST /api/recipes/extract", recipeH.Extract)
	m.HandleFunc("POST /api/recipes/reconcile", recipeH.Reconcile)
	m.HandleFunc("POST /api/recipes/analyze", recipeH.Analyze)
	m.HandleFunc("POST /api/ai/classify-product", aiH.ClassifyProduct)
	m.HandleFunc("POST /api/ai/generate-list", aiH.GenerateList)
	m.HandleFunc("POST /api/ai/recipe-ingredients", aiH.RecipeIngredients)
	m.HandleFunc("GET /api/ai/suggestions", aiH.Suggestions)

	return env
}

// do sends a request as userID (0 for anonymous). A string body is sent raw,
// anything else is JSON encoded.
func (e *testEnv) do(t *testing.T, userID int64, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req = req.WithContext(auth.WithUser(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func (e *testEnv) createList(t *testing.T, userID int64, name string) *model.ShoppingList {
	t.Helper()
	l, err := e.lists.CreateList(userID, name, "")
	require.NoError(t, err)
	return l
}

func (e *testEnv) createItem(t *testing.T, userID, listID int64, name string) *model.Item {
	t.Helper()
	item, err := e.lists.CreateItem(userID, listID, model.NewItem{Name: name})
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}
