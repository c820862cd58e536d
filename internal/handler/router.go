package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/blockforge/craftchat/internal/handler/chat"
	recipeHandler "github.com/blockforge/craftchat/internal/handler/recipe"
	middlewarePkg "github.com/blockforge/craftchat/internal/middleware"
	recipeStore "github.com/blockforge/craftchat/internal/recipe"
	chatService "github.com/blockforge/craftchat/internal/service/chat"
	"github.com/blockforge/craftchat/pkg/utils"
)

// NewRouter wires HTTP routes to core services. generator and recipes may be
// nil; the affected endpoints then respond 503.
func NewRouter(sessions *chatService.Service, generator chatHandler.Generator, recipes *recipeStore.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		chatHandler.New(sessions, generator).RegisterRoutes(api)
		recipeHandler.New(recipes).RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
