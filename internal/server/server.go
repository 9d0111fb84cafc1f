package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dukerupert/hestia/internal/ai"
	"github.com/dukerupert/hestia/internal/config"
	"github.com/dukerupert/hestia/internal/grocery"
	"github.com/dukerupert/hestia/internal/handler"
	"github.com/dukerupert/hestia/internal/middleware"
	"github.com/dukerupert/hestia/internal/recipe"
	"github.com/dukerupert/hestia/internal/store"
	ws "github.com/dukerupert/hestia/internal/websocket"
)

// registerLimit caps account creation per client address.
const registerLimit = 10

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	userStore      *store.UserStore
	listH          *handler.ListHandler
	itemH          *handler.ItemHandler
	recipeH        *handler.RecipeHandler
	aiH            *handler.AIHandler
	userH          *handler.UserHandler
	rateLimiter    *middleware.RateLimiter
	perMinute      int
	allowedOrigins []string
	logger         *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, aiSvc *ai.Service, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger)

	userStore := store.NewUserStore(db)
	listStore := store.NewListStore(db)

	classifier := grocery.NewClassifier(grocery.DefaultRules())
	parser := recipe.NewParser(recipe.UnitQuantity(cfg.Recipe.Units), recipe.BareQuantity(), recipe.ToTaste())
	extractor := recipe.NewExtractor(parser, classifier)
	reconciler := grocery.NewReconciler(cfg.Reconcile.Threshold)

	if aiSvc == nil {
		aiSvc = ai.NewService(nil, classifier, logger)
	}

	return &Server{
		db:             db,
		hub:            hub,
		userStore:      userStore,
		listH:          handler.NewListHandler(listStore, hub, logger.With("component", "list")),
		itemH:          handler.NewItemHandler(listStore, aiSvc, hub, logger.With("component", "item")),
		recipeH:        handler.NewRecipeHandler(extractor, reconciler, listStore, logger.With("component", "recipe")),
		aiH:            handler.NewAIHandler(aiSvc, listStore, hub, logger.With("component", "ai_handler")),
		userH:          handler.NewUserHandler(userStore, listStore, logger.With("component", "user")),
		rateLimiter:    middleware.NewRateLimiter(),
		perMinute:      cfg.RateLimit.PerMinute,
		allowedOrigins: cfg.Server.AllowedOrigins,
		logger:         logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("POST /api/users",
		middleware.RateLimit(s.rateLimiter, middleware.ByIP, registerLimit, time.Minute)(http.HandlerFunc(s.userH.Register)))

	// Protected routes, identified by the gateway's X-User-ID header
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	protected := middleware.RateLimit(s.rateLimiter, middleware.ByUser, s.perMinute, time.Minute)(protectedMux)
	outerMux.Handle("/", middleware.RequireUser(s.userStore)(protected))

	var h http.Handler = outerMux
	h = middleware.CORS(s.allowedOrigins)(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return chimiddleware.Recoverer(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Users
	mux.HandleFunc("GET /api/users/profile", s.userH.Profile)
	mux.HandleFunc("PUT /api/users/profile", s.userH.UpdateProfile)
	mux.HandleFunc("PUT /api/users/password", s.userH.ChangePassword)

	// Shopping lists
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("GET /api/lists/{id}", s.listH.Get)
	mux.HandleFunc("PUT /api/lists/{id}", s.listH.Update)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.Delete)

	// Items
	mux.HandleFunc("POST /api/lists/{list_id}/items", s.itemH.Create)
	mux.HandleFunc("POST /api/lists/{list_id}/items/bulk", s.itemH.CreateBulk)
	mux.HandleFunc("POST /api/lists/{list_id}/clear-completed", s.itemH.ClearCompleted)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("PATCH /api/items/{id}/toggle", s.itemH.Toggle)

	// Recipes
	mux.HandleFunc("POST /api/recipes/extract", s.recipeH.Extract)
	mux.HandleFunc("POST /api/recipes/reconcile", s.recipeH.Reconcile)
	mux.HandleFunc("POST /api/recipes/analyze", s.recipeH.Analyze)

	// AI
	mux.HandleFunc("POST /api/ai/classify-product", s.aiH.ClassifyProduct)
	mux.HandleFunc("POST /api/ai/generate-list", s.aiH.GenerateList)
	mux.HandleFunc("POST /api/ai/recipe-ingredients", s.aiH.RecipeIngredients)
	mux.HandleFunc("GET /api/ai/suggestions", s.aiH.Suggestions)

	// Realtime updates
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.allowedOrigins, s.logger))
}
